// Package monitoring exposes runtime statistics for operators.
package monitoring

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

const bytesPerMB = 1024 * 1024

// MemoryHealth is the GET /health/memory body.
type MemoryHealth struct {
	Timestamp     time.Time `json:"timestamp"`
	HeapAllocMB   float64   `json:"heap_alloc_mb"`
	HeapInuseMB   float64   `json:"heap_inuse_mb"`
	StackInuseMB  float64   `json:"stack_inuse_mb"`
	NumGC         uint32    `json:"num_gc"`
	NumGoroutine  int       `json:"num_goroutine"`
	LastGCPauseMs float64   `json:"last_gc_pause_ms,omitempty"`
}

// ReadMemoryHealth samples the runtime.
func ReadMemoryHealth() MemoryHealth {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	h := MemoryHealth{
		Timestamp:    time.Now().UTC(),
		HeapAllocMB:  float64(stats.Alloc) / bytesPerMB,
		HeapInuseMB:  float64(stats.HeapInuse) / bytesPerMB,
		StackInuseMB: float64(stats.StackInuse) / bytesPerMB,
		NumGC:        stats.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
	}
	if stats.NumGC > 0 {
		h.LastGCPauseMs = float64(stats.PauseNs[(stats.NumGC+255)%256]) / float64(time.Millisecond)
	}
	return h
}

// MemoryHealthHandler writes ReadMemoryHealth as JSON.
func MemoryHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(ReadMemoryHealth()); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
