// Package retention periodically removes aged artifacts from the
// output directory so long-running deployments do not accumulate
// unbounded generated files.
package retention

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Janitor sweeps the artifact directory on a schedule, deleting files
// older than the configured age.
type Janitor struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
	dir       string
	maxAge    time.Duration
	now       func() time.Time
}

// NewJanitor creates a janitor over dir. Files whose modification time
// is older than maxAge are removed on each sweep.
func NewJanitor(dir string, maxAge time.Duration) (*Janitor, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Janitor{
		scheduler: s,
		logger:    slog.Default(),
		dir:       dir,
		maxAge:    maxAge,
		now:       time.Now,
	}, nil
}

// Start schedules the periodic sweep and begins running it.
func (j *Janitor) Start(interval time.Duration) error {
	_, err := j.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(j.sweep),
		gocron.WithName("artifact-retention"),
	)
	if err != nil {
		return fmt.Errorf("schedule retention sweep: %w", err)
	}
	j.scheduler.Start()
	j.logger.Info("artifact retention started", "dir", j.dir, "max_age", j.maxAge, "interval", interval)
	return nil
}

// Stop shuts the scheduler down, waiting for a running sweep to finish.
func (j *Janitor) Stop() error {
	return j.scheduler.Shutdown()
}

// Sweep removes expired artifacts once. It is exported for manual
// invocation and returns how many files were deleted.
func (j *Janitor) Sweep() (int, error) {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		return 0, fmt.Errorf("read artifact dir: %w", err)
	}

	cutoff := j.now().Add(-j.maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(j.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			j.logger.Warn("artifact removal failed", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}
	return removed, nil
}

func (j *Janitor) sweep() {
	removed, err := j.Sweep()
	if err != nil {
		j.logger.Error("retention sweep failed", "error", err)
		return
	}
	if removed > 0 {
		j.logger.Info("retention sweep removed artifacts", "count", removed)
	}
}
