package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeChecker struct {
	dbErr    error
	redisErr error
}

func (f fakeChecker) PingDB(context.Context, time.Duration) error    { return f.dbErr }
func (f fakeChecker) PingRedis(context.Context, time.Duration) error { return f.redisErr }

func TestLive(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler{}.Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyOK(t *testing.T) {
	rec := httptest.NewRecorder()
	h := Handler{Checker: fakeChecker{}}
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if status["db"] != "ok" || status["redis"] != "ok" {
		t.Fatalf("unexpected status payload: %v", status)
	}
}

func TestReadyDegraded(t *testing.T) {
	rec := httptest.NewRecorder()
	h := Handler{Checker: fakeChecker{dbErr: errors.New("connection refused")}}
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
