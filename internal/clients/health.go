package clients

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultProbeTimeout bounds a probe that sets no Timeout.
const DefaultProbeTimeout = 2 * time.Second

// HealthProbe names an upstream and the path that answers for it.
type HealthProbe struct {
	Name    string
	Client  *Client
	Path    string
	Timeout time.Duration
}

type HealthResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"statusCode,omitempty"`
	LatencyMS  int64  `json:"latencyMs"`
	Error      string `json:"error,omitempty"`
}

// CheckHealth treats any HTTP answer below 500 as a reachable API; the
// probed path may well be a 404 on APIs without a health route.
func CheckHealth(ctx context.Context, probe HealthProbe) HealthResult {
	timeout := probe.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res := HealthResult{Name: probe.Name}
	resp, err := probe.Client.Do(ctx, http.MethodGet, probe.Path, "", nil, http.Header{})
	res.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	res.OK = resp.StatusCode < http.StatusInternalServerError
	return res
}

// CheckAll probes every upstream concurrently. Results keep the order of
// probes; healthy reports whether all of them are OK.
func CheckAll(ctx context.Context, probes []HealthProbe) (results []HealthResult, healthy bool) {
	results = make([]HealthResult, len(probes))
	var g errgroup.Group
	for i := range probes {
		i := i
		g.Go(func() error {
			results[i] = CheckHealth(ctx, probes[i])
			return nil
		})
	}
	_ = g.Wait()

	healthy = true
	for _, r := range results {
		healthy = healthy && r.OK
	}
	return results, healthy
}
