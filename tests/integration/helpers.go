package integration

import (
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

const defaultAPIBaseURL = "http://localhost:8081"

// requireAPI skips the test unless a running API is configured via
// INTEGRATION_API_URL. These tests need the full stack: Postgres, NATS and
// the api binary.
func requireAPI(t *testing.T) *TestClient {
	t.Helper()

	baseURL := os.Getenv("INTEGRATION_API_URL")
	if baseURL == "" {
		t.Skip("Set INTEGRATION_API_URL to run integration tests (e.g. " + defaultAPIBaseURL + ")")
	}

	client := NewTestClient(baseURL)
	client.HealthCheck(t)
	return client
}

// uniquePhone derives a phone number unique to this test run, so repeated
// runs against the same database do not collide on the phone constraint.
func uniquePhone(prefix string) string {
	return fmt.Sprintf("+380%s%09d", prefix, time.Now().UnixNano()%1_000_000_000)
}

// LogTestStep logs a test step with formatting
func LogTestStep(t *testing.T, format string, args ...interface{}) {
	t.Helper()
	t.Logf("STEP: "+format, args...)
}

// LogTestResult logs a test result with formatting
func LogTestResult(t *testing.T, format string, args ...interface{}) {
	t.Helper()
	t.Logf("RESULT: "+format, args...)
}
