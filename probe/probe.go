package probe

import (
	"context"
	"time"

	fastshot "github.com/opus-domini/fast-shot"
)

// Result describes one reachability probe of the dashboard HTTP endpoint.
type Result struct {
	URL       string `json:"url"`
	Reachable bool   `json:"reachable"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

func client(baseURL string, timeout time.Duration) fastshot.ClientHttpMethods {
	return fastshot.NewClient(baseURL).
		Config().SetTimeout(timeout).
		Config().SetFollowRedirects(true).
		Build()
}

// Dashboard probes the dashboard health endpoint. Streamlit answers plain
// "ok" on /_stcore/health once the server is up. A non-2xx response or a
// transport error both count as unreachable.
func Dashboard(ctx context.Context, baseURL, healthPath string, timeout time.Duration) Result {
	result := Result{URL: baseURL + healthPath}

	start := time.Now()
	resp, err := client(baseURL, timeout).
		GET(healthPath).
		Context().Set(ctx).
		Header().Add("Accept", "text/plain").
		Retry().SetExponentialBackoff(200*time.Millisecond, 2, 2.0).
		Send()
	result.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body().Close()

	if resp.Status().IsError() {
		msg, readErr := resp.Body().AsString()
		if readErr != nil {
			msg = readErr.Error()
		}
		result.Error = msg
		return result
	}

	result.Reachable = true
	return result
}
