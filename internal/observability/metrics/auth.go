// Package metrics holds the named metrics emitted by the visualflow services.
package metrics

import (
	"time"

	obserrors "github.com/visualflow/visualflow-api/internal/observability/errors"
	"github.com/visualflow/visualflow-api/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Auth event names.
const (
	EventLogin          = "auth.login"
	EventSignup         = "auth.signup"
	EventAccountDeleted = "auth.account_deleted"
	EventUserDeleted    = "admin.user_deleted"
)

const (
	metricProxyCall     = "analysis.proxy"
	metricProxyDuration = "analysis.proxy.duration"
	metricSessions      = "sessions.active"
)

// AuthEvent captures one authentication outcome.
type AuthEvent struct {
	Name      string
	Principal string // "builtin", "stored" or empty
	Err       error
}

// EmitAuthEvent counts an authentication outcome tagged by result and error class.
func EmitAuthEvent(sink statsd.Sink, in AuthEvent) {
	if sink == nil || in.Name == "" {
		return
	}
	tags := resultTags(in.Err)
	if in.Principal != "" {
		tags["principal"] = in.Principal
	}
	sink.Count(in.Name, 1, tags)
}

// ProxyCall captures one forwarded analysis request.
type ProxyCall struct {
	Status   int
	Duration time.Duration
	Err      error
}

// EmitProxyCall counts a proxied analysis call and records its latency.
func EmitProxyCall(sink statsd.Sink, in ProxyCall) {
	if sink == nil {
		return
	}
	tags := resultTags(in.Err)
	if in.Status > 0 {
		tags["status_class"] = statusClass(in.Status)
	}
	sink.Count(metricProxyCall, 1, tags)
	if in.Duration > 0 {
		sink.Timing(metricProxyDuration, in.Duration, CloneTags(tags))
	}
}

// EmitActiveSessions reports the current size of the session table.
func EmitActiveSessions(sink statsd.Sink, n int) {
	if sink == nil {
		return
	}
	sink.Gauge(metricSessions, float64(n), nil)
}

func resultTags(err error) map[string]string {
	if err == nil {
		return map[string]string{"result": ResultSuccess}
	}
	tags := map[string]string{"result": ResultError}
	if class := obserrors.Classify(err); class != "" {
		tags["error_class"] = class
	}
	return tags
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
