package auth

import "strings"

// PatternScore estimates how predictable a submitted password is, 0 (no
// recognizable pattern) to 1 (highly predictable). It is a cheap stand-in
// for a full strength scorer: the detection engine only needs a per-attempt
// signal to average over a window, not an audit-grade estimate.
func PatternScore(password string) float64 {
	if password == "" {
		return 1
	}

	score := 0.0

	if commonPasswords[strings.ToLower(password)] {
		score += 0.6
	}

	switch classes := characterClasses(password); classes {
	case 0, 1:
		score += 0.3
	case 2:
		score += 0.15
	}

	if len(password) < MinPasswordLen {
		score += 0.2
	}

	if allDigits(password) {
		score += 0.2
	}

	if score > 1 {
		score = 1
	}
	return score
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
