package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu              sync.Mutex
	requestCount    map[string]int64
	requestDuration map[string]time.Duration
	errorCount      map[string]int64
	storeOps        map[string]int64
	storeFailures   map[string]int64
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	Requests          map[string]int64 `json:"requests"`
	RequestDurationMs map[string]int64 `json:"request_duration_ms"`
	Errors            map[string]int64 `json:"errors"`
	StoreOps          map[string]int64 `json:"store_ops"`
	StoreFailures     map[string]int64 `json:"store_failures"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount:    make(map[string]int64),
		requestDuration: make(map[string]time.Duration),
		errorCount:      make(map[string]int64),
		storeOps:        make(map[string]int64),
		storeFailures:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requestDuration[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordStoreOp counts one operation against a department store.
func (m *Metrics) RecordStoreOp(store, op string, err error) {
	if m == nil {
		return
	}
	key := store + "|" + op
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeOps[key]++
	if err != nil {
		m.storeFailures[key]++
	}
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	durations := make(map[string]int64, len(m.requestDuration))
	for k, v := range m.requestDuration {
		durations[k] = v.Milliseconds()
	}
	return Snapshot{
		Requests:          copyCounts(m.requestCount),
		RequestDurationMs: durations,
		Errors:            copyCounts(m.errorCount),
		StoreOps:          copyCounts(m.storeOps),
		StoreFailures:     copyCounts(m.storeFailures),
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
