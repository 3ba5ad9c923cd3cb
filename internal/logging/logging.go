// Package logging routes the standard logger to stdout and a daily file
// app-YYYY-MM-DD.log, and prunes files older than the retention window.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const dateLayout = "2006-01-02"

type Rotator struct {
	dir           string
	retentionDays int
	console       io.Writer
	now           func() time.Time

	mu          sync.Mutex
	file        *os.File
	currentDate string
	scheduler   *cron.Cron
}

// Setup opens today's file, points the standard logger at it and schedules a
// daily rotation. Call Close on shutdown.
func Setup(dir string, retentionDays int) (*Rotator, error) {
	r, err := NewRotator(dir, retentionDays, os.Stdout, time.Now)
	if err != nil {
		return nil, err
	}
	r.scheduler = cron.New()
	if _, err := r.scheduler.AddFunc("@daily", func() {
		if err := r.Rotate(); err != nil {
			log.Printf("log rotation: %v", err)
		}
	}); err != nil {
		r.Close()
		return nil, err
	}
	r.scheduler.Start()
	return r, nil
}

// NewRotator opens the file for now() and cleans old files without
// scheduling anything.
func NewRotator(dir string, retentionDays int, console io.Writer, now func() time.Time) (*Rotator, error) {
	if retentionDays < 1 {
		retentionDays = 1
	}
	if retentionDays > 7 {
		retentionDays = 7
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	r := &Rotator{dir: dir, retentionDays: retentionDays, console: console, now: now}
	date := now().Format(dateLayout)
	file, err := openLogFile(dir, date)
	if err != nil {
		return nil, err
	}
	r.file = file
	r.currentDate = date
	log.SetOutput(io.MultiWriter(console, file))
	r.cleanup()
	return r, nil
}

// Rotate switches to a new file when the date has changed.
func (r *Rotator) Rotate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	date := r.now().Format(dateLayout)
	if date == r.currentDate {
		return nil
	}
	newFile, err := openLogFile(r.dir, date)
	if err != nil {
		return err
	}
	log.SetOutput(io.MultiWriter(r.console, newFile))
	_ = r.file.Close()
	r.file = newFile
	r.currentDate = date
	r.cleanup()
	return nil
}

// Close stops the scheduler, restores console-only logging and closes the file.
func (r *Rotator) Close() {
	if r.scheduler != nil {
		<-r.scheduler.Stop().Done()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	log.SetOutput(r.console)
	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
	}
}

func openLogFile(logDir, date string) (*os.File, error) {
	filename := filepath.Join(logDir, fmt.Sprintf("app-%s.log", date))
	return os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func (r *Rotator) cleanup() {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return
	}
	today, _ := time.Parse(dateLayout, r.now().Format(dateLayout))
	cutoff := today.AddDate(0, 0, -(r.retentionDays - 1))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		datePart := strings.TrimSuffix(strings.TrimPrefix(name, "app-"), ".log")
		logDate, err := time.Parse(dateLayout, datePart)
		if err != nil {
			continue
		}
		if logDate.Before(cutoff) {
			_ = os.Remove(filepath.Join(r.dir, name))
		}
	}
}
