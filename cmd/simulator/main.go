package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"
)

// Generates synthetic login traffic against a running instance so the
// detection thresholds can be exercised end to end. Modes:
//
//	normal     - occasional logins from rotating IPs, mostly successful shape
//	bruteforce - one username, many passwords, one source IP
//	stuffing   - many usernames, one password, one source IP
//	spray      - many usernames, one password, slow cadence
type simulator struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "target server base URL")
		mode     = flag.String("mode", "bruteforce", "traffic mode: normal, bruteforce, stuffing, spray")
		sourceIP = flag.String("source-ip", "203.0.113.50", "spoofed client IP sent via X-Forwarded-For")
		users    = flag.String("users", "alice,bob,carol,dave,erin,frank", "comma-separated usernames")
		count    = flag.Int("count", 20, "attempts per credential")
		delay    = flag.Duration("delay", 200*time.Millisecond, "pause between attempts")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sim := &simulator{
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: strings.TrimRight(*baseURL, "/"),
		logger:  logger,
	}

	usernames := strings.Split(*users, ",")

	logger.Info("starting traffic simulation",
		slog.String("mode", *mode),
		slog.String("target", sim.baseURL),
		slog.String("source_ip", *sourceIP))

	switch *mode {
	case "normal":
		sim.runNormal(usernames, *count, *delay)
	case "bruteforce":
		sim.runBruteForce(usernames[0], *sourceIP, *count, *delay)
	case "stuffing":
		sim.runStuffing(usernames, *sourceIP, *count, *delay)
	case "spray":
		sim.runSpray(usernames, *sourceIP)
	default:
		logger.Error("unknown mode", slog.String("mode", *mode))
		os.Exit(1)
	}

	logger.Info("simulation complete")
}

// runBruteForce hammers a single account with many passwords from one IP.
func (s *simulator) runBruteForce(username, sourceIP string, count int, delay time.Duration) {
	for i := 0; i < count; i++ {
		password := fmt.Sprintf("password%d!", i)
		s.attempt(username, password, sourceIP)
		time.Sleep(delay)
	}
}

// runStuffing replays one leaked password against many accounts from one IP.
func (s *simulator) runStuffing(usernames []string, sourceIP string, count int, delay time.Duration) {
	leaked := "Summer2024!"
	for i := 0; i < count; i++ {
		username := usernames[i%len(usernames)]
		s.attempt(username, leaked, sourceIP)
		time.Sleep(delay)
	}
}

// runSpray tries one password per account with a slow cadence, the shape
// that stays under burst thresholds.
func (s *simulator) runSpray(usernames []string, sourceIP string) {
	for _, username := range usernames {
		s.attempt(username, "Welcome1!", sourceIP)
		time.Sleep(1 * time.Second)
	}
}

// runNormal sends low-rate attempts from rotating addresses with jittered
// timing, the baseline the classifier should leave alone.
func (s *simulator) runNormal(usernames []string, count int, delay time.Duration) {
	for i := 0; i < count; i++ {
		username := usernames[rand.Intn(len(usernames))]
		ip := fmt.Sprintf("198.51.100.%d", rand.Intn(200)+1)
		s.attempt(username, "correct-horse-battery", ip)
		jitter := time.Duration(rand.Int63n(int64(delay)))
		time.Sleep(delay + jitter)
	}
}

func (s *simulator) attempt(username, password, sourceIP string) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		s.logger.Error("failed to encode request", slog.Any("error", err))
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		s.logger.Error("failed to build request", slog.Any("error", err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", sourceIP)
	req.Header.Set("User-Agent", "sentinel-simulator/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("request failed", slog.Any("error", err))
		return
	}
	defer resp.Body.Close()

	s.logger.Info("attempt sent",
		slog.String("username", username),
		slog.String("source_ip", sourceIP),
		slog.Int("status", resp.StatusCode))
}
