package models

// Classification is the label assigned to a source by the risk classifier.
type Classification string

const (
	ClassNormal             Classification = "normal"
	ClassSuspicious         Classification = "suspicious"
	ClassCredentialStuffing Classification = "credential_stuffing"
	ClassBruteForce         Classification = "brute_force"
)

// Action is the inline decision returned to the login flow.
type Action string

const (
	ActionAllow Action = "allow"
	ActionWarn  Action = "warn"
	ActionBlock Action = "block"
)

// FeatureVectorSize is the fixed input width of the risk model.
const FeatureVectorSize = 8

// FeatureVector holds the behavioral features computed for one source IP over
// the detection window. It is recomputed on every evaluation and never cached;
// window contents change continuously.
type FeatureVector struct {
	FailedRate        float64 // failed / total, 0 if no attempts
	UniqueUsernames   float64 // distinct usernames targeted
	AttemptsPerMinute float64
	TimeVariance      float64 // spread of inter-arrival gaps, 0 for bursts and <2 attempts
	UADiversity       float64 // distinct client fingerprints / total
	PatternScore      float64 // mean per-attempt password-pattern score
	SuccessRate       float64
	TotalAttempts     float64
}

// Values returns the vector in model input order.
func (v FeatureVector) Values() [FeatureVectorSize]float64 {
	return [FeatureVectorSize]float64{
		v.FailedRate,
		v.UniqueUsernames,
		v.AttemptsPerMinute,
		v.TimeVariance,
		v.UADiversity,
		v.PatternScore,
		v.SuccessRate,
		v.TotalAttempts,
	}
}

// IsZero reports whether the vector was computed from an empty window.
func (v FeatureVector) IsZero() bool {
	return v.TotalAttempts == 0
}

// RiskAssessment is the outcome of one decision-gate evaluation.
type RiskAssessment struct {
	Classification Classification `json:"classification"`
	Confidence     float64        `json:"confidence"`
	RiskScore      int            `json:"risk_score"`
	Action         Action         `json:"action"`
}
