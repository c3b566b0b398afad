// Package observability samples the process and the room runtime for periodic reporting.
package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
)

type StatsProvider func() (rooms int, sessions int)

// Snapshot is one sample of the server state.
type Snapshot struct {
	At         time.Time `json:"at"`
	Rooms      int       `json:"rooms"`
	Sessions   int       `json:"sessions"`
	RSSBytes   uint64    `json:"rss_bytes"`
	CPUPercent float64   `json:"cpu_percent"`
	Goroutines int       `json:"goroutines"`
}

type Monitor struct {
	log     *slog.Logger
	mu      sync.RWMutex
	stats   StatsProvider
	process *process.Process
	latest  Snapshot
}

// NewMonitor watches the current process. Without process access only runtime figures are sampled.
func NewMonitor(stats StatsProvider, log *slog.Logger) *Monitor {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn("Process metrics unavailable", "error", err)
		p = nil
	}
	return &Monitor{log: log, stats: stats, process: p}
}

func (m *Monitor) Collect() Snapshot {
	rooms, sessions := m.stats()
	snapshot := Snapshot{
		At:         time.Now().UTC(),
		Rooms:      rooms,
		Sessions:   sessions,
		Goroutines: runtime.NumGoroutine(),
	}
	if m.process != nil {
		if mem, err := m.process.MemoryInfo(); err == nil {
			snapshot.RSSBytes = mem.RSS
		} else {
			m.log.Debug("Error while finding process ram usage", "err", err)
		}
		if cpu, err := m.process.CPUPercent(); err == nil {
			snapshot.CPUPercent = cpu
		} else {
			m.log.Debug("Error while finding process cpu usage", "err", err)
		}
	}

	m.mu.Lock()
	m.latest = snapshot
	m.mu.Unlock()
	return snapshot
}

func (m *Monitor) Latest() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}
