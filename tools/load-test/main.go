package main

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"attendance.service/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// Each simulated employee registers and then walks through one work day. The
// punches only succeed for users an administrator has approved; others count
// as 403 responses, which still exercises the full request path.
var sequence = []string{"in", "break_in", "break_out", "out"}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load configuration: %v\n", err)
		os.Exit(1)
	}

	baseURL := "http://localhost:" + cfg.ServerPort + "/api/v1"
	numEmployees := 5000
	concurrency := 50 // Number of concurrent employees to avoid local port exhaustion
	totalRequests := numEmployees * (len(sequence) + 1)

	fmt.Printf("Starting load test: %d employees (%d requests each) to %s with concurrency %d\n",
		numEmployees, len(sequence)+1, baseURL, concurrency)

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	var successCount, forbiddenCount, failCount int64
	client := &http.Client{Timeout: 10 * time.Second}

	startTime := time.Now()

	for i := 0; i < numEmployees; i++ {
		wg.Add(1)
		sem <- struct{}{}

		userID := fmt.Sprintf("load-test-user-%d", i)

		go func(userID string, n int) {
			defer wg.Done()
			defer func() { <-sem }()

			token, err := signToken(cfg.JWTSecret, userID)
			if err != nil {
				atomic.AddInt64(&failCount, int64(len(sequence)+1))
				return
			}

			bodies := []struct{ path, body string }{
				{"/employees/apply", fmt.Sprintf(`{"employee_no":"LT%05d","full_name":"Load Test %d"}`, n, n)},
			}
			for _, typ := range sequence {
				bodies = append(bodies, struct{ path, body string }{"/punches", fmt.Sprintf(`{"type":"%s","location":"load-test"}`, typ)})
			}

			for _, b := range bodies {
				req, _ := http.NewRequest(http.MethodPost, baseURL+b.path, bytes.NewBufferString(b.body))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("Authorization", "Bearer "+token)

				resp, err := client.Do(req)
				if err != nil {
					atomic.AddInt64(&failCount, 1)
					continue
				}
				switch {
				case resp.StatusCode >= 200 && resp.StatusCode < 300:
					atomic.AddInt64(&successCount, 1)
				case resp.StatusCode == http.StatusForbidden:
					atomic.AddInt64(&forbiddenCount, 1)
				default:
					atomic.AddInt64(&failCount, 1)
				}
				resp.Body.Close()
			}
		}(userID, i)
	}

	wg.Wait()
	duration := time.Since(startTime)

	fmt.Println("\n--- Load Test Results ---")
	fmt.Printf("Total Duration: %v\n", duration)
	fmt.Printf("Total Requests: %d\n", totalRequests)
	fmt.Printf("Successful:     %d\n", successCount)
	fmt.Printf("Not approved:   %d\n", forbiddenCount)
	fmt.Printf("Failed:         %d\n", failCount)
	fmt.Printf("Requests/Sec:   %.2f\n", float64(totalRequests)/duration.Seconds())
}

func signToken(secret, userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
