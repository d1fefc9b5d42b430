package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// StatsJob periodically recomputes daily stats for every location
type StatsJob struct {
	service  Service
	interval time.Duration
	now      func() time.Time
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewStatsJob(service Service, interval time.Duration) *StatsJob {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &StatsJob{
		service:  service,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		done:     make(chan struct{}),
	}
}

// Start runs one pass covering yesterday and today, then ticks on today only
func (j *StatsJob) Start(ctx context.Context) {
	slog.Info("Starting analytics stats job", slog.Duration("interval", j.interval))

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()

		today := j.now()
		j.rollup(ctx, today.AddDate(0, 0, -1))
		j.rollup(ctx, today)

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.rollup(ctx, j.now())
			case <-j.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (j *StatsJob) Stop() {
	j.once.Do(func() {
		close(j.done)
	})
	j.wg.Wait()
	slog.Info("Analytics stats job stopped")
}

func (j *StatsJob) rollup(ctx context.Context, day time.Time) {
	written, err := j.service.RollupDay(ctx, day)
	if err != nil {
		slog.Error("Error rolling up daily stats",
			slog.String("date", day.Format(time.DateOnly)),
			slog.String("error", err.Error()),
		)
		return
	}
	if written > 0 {
		slog.Debug("Daily stats rolled up",
			slog.String("date", day.Format(time.DateOnly)),
			slog.Int("locations", written),
		)
	}
}
