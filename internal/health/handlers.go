package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Checker represents dependencies that can be probed for readiness.
type Checker interface {
	PingDB(ctx context.Context, timeout time.Duration) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker      Checker
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready probes every dependency and reports per-dependency status. Any failed
// probe turns the response into a 503 with the failure message in place of "ok".
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}

	probes := []struct {
		name    string
		probe   func(context.Context, time.Duration) error
		timeout time.Duration
	}{
		{"db", h.Checker.PingDB, orDefault(h.DBTimeout, 500*time.Millisecond)},
		{"redis", h.Checker.PingRedis, orDefault(h.RedisTimeout, 300*time.Millisecond)},
	}

	status := make(map[string]string, len(probes))
	healthy := true
	for _, p := range probes {
		if err := p.probe(r.Context(), p.timeout); err != nil {
			status[p.name] = err.Error()
			healthy = false
			continue
		}
		status[p.name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
