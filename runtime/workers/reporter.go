package workers

import (
	"context"
	"log/slog"
	"time"

	"huddle/observability"
)

const DefaultMetricInterval = 30 * time.Second

// ReporterWorker logs a runtime snapshot every interval until its context ends.
type ReporterWorker struct {
	monitor  *observability.Monitor
	interval time.Duration
	log      *slog.Logger
}

func NewReporterWorker(monitor *observability.Monitor, interval time.Duration, log *slog.Logger) *ReporterWorker {
	if interval <= 0 {
		interval = DefaultMetricInterval
	}
	return &ReporterWorker{monitor: monitor, interval: interval, log: log}
}

func (w *ReporterWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report()
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *ReporterWorker) report() {
	stats := w.monitor.Collect()
	w.log.Info("Runtime stats",
		"rooms", stats.Rooms,
		"sessions", stats.Sessions,
		"rss_mb", stats.RSSBytes/1024/1024,
		"cpu_percent", stats.CPUPercent,
		"goroutines", stats.Goroutines)
}
