// Package interceptors decorates outbound HTTP calls to third-party services.
package interceptors

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const HeaderXRequestID = "X-Request-Id"

// Transport forwards the inbound request id to the upstream and logs every
// call with its latency.
type Transport struct {
	upstream string
	base     http.RoundTripper
}

// NewTransport wraps base, or an otelhttp-instrumented default transport
// when base is nil.
func NewTransport(upstream string, base http.RoundTripper) *Transport {
	if base == nil {
		base = otelhttp.NewTransport(http.DefaultTransport)
	}
	return &Transport{upstream: upstream, base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if id := middleware.GetReqID(ctx); id != "" && req.Header.Get(HeaderXRequestID) == "" {
		req = req.Clone(ctx)
		req.Header.Set(HeaderXRequestID, id)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "upstream call failed",
			"upstream", t.upstream,
			"method", req.Method,
			"host", req.URL.Host,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	slog.DebugContext(ctx, "upstream call",
		"upstream", t.upstream,
		"method", req.Method,
		"host", req.URL.Host,
		"status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(),
	)
	return resp, nil
}
