package infrastructure

import (
	"context"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SystemStats is a snapshot of runtime resource usage
type SystemStats struct {
	Goroutines    int     `json:"goroutines"`
	HeapAllocMB   float64 `json:"heap_alloc_mb"`
	SysMB         float64 `json:"sys_mb"`
	NumGC         uint32  `json:"num_gc"`
	CPUCount      int     `json:"cpu_count"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// CollectSystemStats reads runtime statistics for a process started at start
func CollectSystemStats(start time.Time) SystemStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemStats{
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(m.HeapAlloc) / (1024 * 1024),
		SysMB:         float64(m.Sys) / (1024 * 1024),
		NumGC:         m.NumGC,
		CPUCount:      runtime.NumCPU(),
		UptimeSeconds: time.Since(start).Seconds(),
	}
}

// RegisterRuntimeGauges exposes goroutine count, heap size and uptime as
// observable gauges, read on every collection
func RegisterRuntimeGauges(meter metric.Meter, start time.Time) error {
	goroutines, err := meter.Int64ObservableGauge("runtime_goroutines",
		metric.WithDescription("Number of goroutines"))
	if err != nil {
		return err
	}
	heap, err := meter.Int64ObservableGauge("runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"), metric.WithUnit("By"))
	if err != nil {
		return err
	}
	uptime, err := meter.Float64ObservableGauge("process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"), metric.WithUnit("s"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		o.ObserveInt64(goroutines, int64(runtime.NumGoroutine()))
		o.ObserveInt64(heap, int64(m.HeapAlloc))
		o.ObserveFloat64(uptime, time.Since(start).Seconds())
		return nil
	}, goroutines, heap, uptime)
	return err
}
