// Package sensor samples host resources for the management API. On a
// real device this is where hardware telemetry (thermal, power) would
// be read; here the sampler reports process and host figures that are
// portable across platforms.
package sensor

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// Snapshot contains a lightweight view of host resources. Fields are
// best-effort and may be zero on unsupported platforms.
type Snapshot struct {
	Timestamp time.Time

	// CPU count visible to the process
	CPUCount int

	// Memory in bytes
	MemTotal uint64
	MemUsed  uint64

	// Goroutines currently live in the daemon
	Goroutines int

	// Uptime of the sampler
	Uptime time.Duration
}

// Sensor polls host resources and exposes a current Snapshot.
type Sensor struct {
	mu       sync.RWMutex
	snap     Snapshot
	interval time.Duration
	started  time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a sensor that polls every interval.
func New(interval time.Duration) *Sensor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	s := &Sensor{interval: interval}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Start begins background polling. Call Stop to terminate.
func (s *Sensor) Start() {
	s.started = time.Now()
	s.sample()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.sample()
			}
		}
	}()
}

// Stop stops background polling and waits for the worker to exit.
func (s *Sensor) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Snapshot returns the most recent snapshot (fast, copy).
func (s *Sensor) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// sample collects best-effort metrics and updates the current snapshot.
func (s *Sensor) sample() {
	snap := Snapshot{
		Timestamp:  time.Now(),
		CPUCount:   runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		Uptime:     time.Since(s.started),
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	snap.MemTotal = memStats.Sys
	snap.MemUsed = memStats.Alloc

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}
