package server

import (
	"sync"
)

// Metrics holds the server's in-process counters.
type Metrics struct {
	mu sync.RWMutex

	// Submission metrics
	submissionsAccepted int64
	submissionsRejected int64
	listRequests        int64
	storeErrors         int64
	rateLimited         int64

	// Delivery metrics
	webhooksSent   int64
	webhooksFailed int64
	backupsTotal   int64
	backupFailures int64

	// System metrics
	requestsTotal    int64
	requestErrors5xx int64
	requestErrors4xx int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordSubmissionAccepted records a stored submission
func (m *Metrics) RecordSubmissionAccepted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissionsAccepted++
}

// RecordSubmissionRejected records a submission refused as client error
func (m *Metrics) RecordSubmissionRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissionsRejected++
}

func (m *Metrics) RecordList() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listRequests++
}

// RecordStoreError records a failed load or append
func (m *Metrics) RecordStoreError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeErrors++
}

func (m *Metrics) RecordRateLimited() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimited++
}

// RecordWebhook records the final outcome of one webhook delivery
func (m *Metrics) RecordWebhook(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.webhooksSent++
	} else {
		m.webhooksFailed++
	}
}

// RecordBackup records one backup run; err is nil on success.
func (m *Metrics) RecordBackup(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backupsTotal++
	if err != nil {
		m.backupFailures++
	}
}

// RecordRequest records an HTTP request
func (m *Metrics) RecordRequest(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestsTotal++

	if statusCode >= 500 {
		m.requestErrors5xx++
	} else if statusCode >= 400 {
		m.requestErrors4xx++
	}
}

// Snapshot returns a snapshot of current metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		SubmissionsAccepted: m.submissionsAccepted,
		SubmissionsRejected: m.submissionsRejected,
		ListRequests:        m.listRequests,
		StoreErrors:         m.storeErrors,
		RateLimited:         m.rateLimited,
		WebhooksSent:        m.webhooksSent,
		WebhooksFailed:      m.webhooksFailed,
		BackupsTotal:        m.backupsTotal,
		BackupFailures:      m.backupFailures,
		RequestsTotal:       m.requestsTotal,
		RequestErrors5xx:    m.requestErrors5xx,
		RequestErrors4xx:    m.requestErrors4xx,
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	SubmissionsAccepted int64 `json:"submissions_accepted"`
	SubmissionsRejected int64 `json:"submissions_rejected"`
	ListRequests        int64 `json:"list_requests"`
	StoreErrors         int64 `json:"store_errors"`
	RateLimited         int64 `json:"rate_limited"`

	WebhooksSent   int64 `json:"webhooks_sent"`
	WebhooksFailed int64 `json:"webhooks_failed"`
	BackupsTotal   int64 `json:"backups_total"`
	BackupFailures int64 `json:"backup_failures"`

	RequestsTotal    int64 `json:"requests_total"`
	RequestErrors5xx int64 `json:"request_errors_5xx"`
	RequestErrors4xx int64 `json:"request_errors_4xx"`
}
