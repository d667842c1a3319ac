package observability

import (
	"strconv"
	"sync"
)

// Metrics provides basic in-memory counters for outbound calls.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	degradations map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		degradations: make(map[string]int64),
	}
}

// RecordRequest increments counters for a completed remote call.
func (m *Metrics) RecordRequest(endpoint, method string, status int) {
	if m == nil {
		return
	}
	key := endpoint + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters for a failed remote call.
func (m *Metrics) RecordError(endpoint, method, code string) {
	if m == nil {
		return
	}
	key := endpoint + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordDegradation counts a fallback substitution for an endpoint.
func (m *Metrics) RecordDegradation(endpoint string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.degradations[endpoint]++
}

// Degradations returns a copy of the fallback counters.
func (m *Metrics) Degradations() map[string]int64 {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.degradations))
	for k, v := range m.degradations {
		out[k] = v
	}
	return out
}
