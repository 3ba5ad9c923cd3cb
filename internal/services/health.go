package services

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Pinger is satisfied by *sqlx.DB. It is nil for the in-memory store.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthReport struct {
	Status            string    `json:"status"`
	Database          string    `json:"database"`
	CapturedAt        time.Time `json:"capturedAt"`
	Goroutines        int       `json:"goroutines"`
	ProcessRSSBytes   int64     `json:"processRssBytes"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `json:"diskTotalBytes"`
	DiskUsedBytes     int64     `json:"diskUsedBytes"`
}

// CaptureHealth pings the database and samples process and host metrics.
// Metric failures leave zeros; only a failed ping degrades the status.
func CaptureHealth(ctx context.Context, db Pinger, diskPath string) HealthReport {
	report := HealthReport{
		Status:     "ok",
		Database:   "memory",
		CapturedAt: Now(),
		Goroutines: runtime.NumGoroutine(),
	}
	if db != nil {
		report.Database = "ok"
		if err := db.PingContext(ctx); err != nil {
			report.Status = "degraded"
			report.Database = "unreachable"
		}
	}
	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if rss, err := proc.MemoryInfoWithContext(ctx); err == nil && rss != nil {
			report.ProcessRSSBytes = int64(rss.RSS)
		}
	}
	if memStat, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		report.SystemMemoryTotal = int64(memStat.Total)
		report.SystemMemoryUsed = int64(memStat.Total - memStat.Available)
	}
	diskStat, err := disk.UsageWithContext(ctx, diskPath)
	if err != nil {
		diskStat, err = disk.UsageWithContext(ctx, "/")
	}
	if err == nil {
		report.DiskTotalBytes = int64(diskStat.Total)
		report.DiskUsedBytes = int64(diskStat.Used)
	}
	return report
}
