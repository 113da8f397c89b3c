// prometheus.go - Prometheus text exposition of the server counters.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HandleMetrics serves the counters in the Prometheus text format.
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot := s.metrics.Snapshot()

	var out strings.Builder

	out.WriteString("# HELP lead_info Application version info\n")
	out.WriteString("# TYPE lead_info gauge\n")
	fmt.Fprintf(&out, "lead_info{version=\"%s\",service=\"%s\"} 1\n\n",
		prometheusLabel(s.versionOrDev()), prometheusLabel(s.branding.ServiceName))

	counter(&out, "lead_requests_total", "Total number of HTTP requests", snapshot.RequestsTotal)

	out.WriteString("# HELP lead_request_errors_total HTTP error responses by class\n")
	out.WriteString("# TYPE lead_request_errors_total counter\n")
	fmt.Fprintf(&out, "lead_request_errors_total{class=\"4xx\"} %d\n", snapshot.RequestErrors4xx)
	fmt.Fprintf(&out, "lead_request_errors_total{class=\"5xx\"} %d\n\n", snapshot.RequestErrors5xx)

	out.WriteString("# HELP lead_submissions_total Submissions by outcome\n")
	out.WriteString("# TYPE lead_submissions_total counter\n")
	fmt.Fprintf(&out, "lead_submissions_total{outcome=\"accepted\"} %d\n", snapshot.SubmissionsAccepted)
	fmt.Fprintf(&out, "lead_submissions_total{outcome=\"rejected\"} %d\n\n", snapshot.SubmissionsRejected)

	counter(&out, "lead_list_requests_total", "Total number of submission list requests", snapshot.ListRequests)
	counter(&out, "lead_store_errors_total", "Failed store loads and appends", snapshot.StoreErrors)
	counter(&out, "lead_rate_limited_total", "Submit requests refused by the rate limiter", snapshot.RateLimited)

	out.WriteString("# HELP lead_webhooks_total Webhook deliveries by outcome\n")
	out.WriteString("# TYPE lead_webhooks_total counter\n")
	fmt.Fprintf(&out, "lead_webhooks_total{outcome=\"sent\"} %d\n", snapshot.WebhooksSent)
	fmt.Fprintf(&out, "lead_webhooks_total{outcome=\"failed\"} %d\n\n", snapshot.WebhooksFailed)

	counter(&out, "lead_backups_total", "Backup runs", snapshot.BackupsTotal)
	counter(&out, "lead_backup_failures_total", "Failed backup runs", snapshot.BackupFailures)

	out.WriteString("# HELP lead_uptime_seconds Application uptime in seconds\n")
	out.WriteString("# TYPE lead_uptime_seconds counter\n")
	fmt.Fprintf(&out, "lead_uptime_seconds %.0f\n", time.Since(s.started).Seconds())

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out.String()))
}

func counter(out *strings.Builder, name, help string, v int64) {
	fmt.Fprintf(out, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", name, help, name, name, v)
}

func (s *Server) versionOrDev() string {
	if s.version == "" {
		return "dev"
	}
	return s.version
}

// prometheusLabel escapes backslashes, quotes and newlines in a label value.
func prometheusLabel(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	value = strings.ReplaceAll(value, "\n", "\\n")
	return value
}
