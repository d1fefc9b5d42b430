package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"ewait/internal/shared/apperrors"
	"ewait/internal/shared/constants"
	"ewait/pkg/cache"
)

// Entry statuses as stored in queue_entries.status
const (
	statusWaiting   = "WAITING"
	statusCompleted = "COMPLETED"
	statusNoShow    = "NO_SHOW"
	statusCancelled = "CANCELLED"
)

const (
	defaultSummaryDays = 7
	maxSummaryDays     = 365
	recentEntriesLimit = 10
	topQueuesLimit     = 5
)

// Tracker records business events. Implementations never fail the caller.
type Tracker interface {
	Track(ctx context.Context, event EventName, refs Refs)
}

type Service interface {
	Tracker
	SetCacheService(cacheService cache.Service)
	GetSummary(ctx context.Context, ownerID uuid.UUID, days int, locationID *uuid.UUID) (*Summary, error)
	UpdateDailyStats(ctx context.Context, locationID uuid.UUID, date time.Time) (*DailyStats, error)
	RollupDay(ctx context.Context, date time.Time) (int, error)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	now          func() time.Time
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) Track(ctx context.Context, event EventName, refs Refs) {
	record := &Event{
		Event:      event,
		LocationID: refs.LocationID,
		QueueID:    refs.QueueID,
		EntryID:    refs.EntryID,
		UserID:     refs.UserID,
	}
	if len(refs.Metadata) > 0 {
		if raw, err := json.Marshal(refs.Metadata); err == nil {
			record.Metadata = string(raw)
		}
	}

	if err := s.repo.CreateEvent(ctx, record); err != nil {
		slog.WarnContext(ctx, "Analytics event error",
			slog.String("event", string(event)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *service) GetSummary(ctx context.Context, ownerID uuid.UUID, days int, locationID *uuid.UUID) (*Summary, error) {
	if days <= 0 {
		days = defaultSummaryDays
	}
	if days > maxSummaryDays {
		days = maxSummaryDays
	}

	location := ""
	if locationID != nil {
		location = locationID.String()
	}

	if s.cacheService == nil {
		return s.buildSummary(ctx, ownerID, days, locationID)
	}

	var summary Summary
	key := constants.BuildAnalyticsSummaryKey(ownerID.String(), days, location)
	err := s.cacheService.GetOrSet(ctx, key, constants.TTL_ANALYTICS_SUMMARY, func() (interface{}, error) {
		return s.buildSummary(ctx, ownerID, days, locationID)
	}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *service) buildSummary(ctx context.Context, ownerID uuid.UUID, days int, locationID *uuid.UUID) (*Summary, error) {
	locations, err := s.repo.OwnerLocations(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}

	locationIDs := make([]uuid.UUID, 0, len(locations))
	for _, loc := range locations {
		locationIDs = append(locationIDs, loc.ID)
	}

	if locationID != nil {
		owned := false
		for _, id := range locationIDs {
			if id == *locationID {
				owned = true
				break
			}
		}
		if !owned {
			return nil, apperrors.NotFound("Location not found")
		}
		locationIDs = []uuid.UUID{*locationID}
	}

	startDate := s.now().AddDate(0, 0, -days)
	summary := &Summary{
		DailyStats:    []DailyStats{},
		RecentEntries: []RecentEntry{},
		TopQueues:     []TopQueue{},
		Locations:     locations,
		Period:        Period{Days: days, StartDate: startDate},
	}
	if summary.Locations == nil {
		summary.Locations = []LocationRef{}
	}
	if len(locationIDs) == 0 {
		return summary, nil
	}

	counts, err := s.repo.StatusCounts(ctx, locationIDs, startDate)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	summary.Summary = summarize(counts)

	if summary.DailyStats, err = s.repo.DailyStatsSince(ctx, locationIDs, truncateDay(startDate)); err != nil {
		return nil, fmt.Errorf("failed to load daily stats: %w", err)
	}
	if summary.RecentEntries, err = s.repo.RecentEntries(ctx, locationIDs, recentEntriesLimit); err != nil {
		return nil, fmt.Errorf("failed to load recent entries: %w", err)
	}
	if summary.TopQueues, err = s.repo.TopQueues(ctx, locationIDs, startDate, topQueuesLimit); err != nil {
		return nil, fmt.Errorf("failed to load top queues: %w", err)
	}

	return summary, nil
}

func summarize(counts []StatusCount) SummaryCounts {
	var out SummaryCounts
	for _, c := range counts {
		out.TotalJoins += c.Count
		switch c.Status {
		case statusCompleted:
			out.Completed = c.Count
		case statusNoShow:
			out.NoShows = c.Count
		case statusCancelled:
			out.Cancelled = c.Count
		case statusWaiting:
			out.Waiting = c.Count
		}
	}
	return out
}

func (s *service) UpdateDailyStats(ctx context.Context, locationID uuid.UUID, date time.Time) (*DailyStats, error) {
	start := truncateDay(date)
	end := start.AddDate(0, 0, 1)

	entries, err := s.repo.EntriesJoinedBetween(ctx, locationID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries for %s: %w", start.Format(time.DateOnly), err)
	}

	stats := ComputeDailyStats(locationID, start, entries)
	if err := s.repo.UpsertDailyStats(ctx, stats); err != nil {
		return nil, fmt.Errorf("failed to save daily stats: %w", err)
	}
	return stats, nil
}

// RollupDay recomputes date's stats for every location and returns how many were written
func (s *service) RollupDay(ctx context.Context, date time.Time) (int, error) {
	ids, err := s.repo.AllLocationIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list locations: %w", err)
	}

	written := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return written, ctx.Err()
		}
		if _, err := s.UpdateDailyStats(ctx, id, date); err != nil {
			slog.WarnContext(ctx, "daily stats rollup failed",
				slog.String("location_id", id.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		written++
	}

	if written > 0 && s.cacheService != nil {
		if err := s.cacheService.DeletePattern(ctx, constants.PATTERN_INVALIDATE_ANALYTICS); err != nil {
			slog.WarnContext(ctx, "analytics cache invalidation failed", slog.String("error", err.Error()))
		}
	}
	return written, nil
}

// ComputeDailyStats folds one day of entries into totals, average wait of
// completed entries (joined to called) and the busiest join hour (UTC).
func ComputeDailyStats(locationID uuid.UUID, day time.Time, entries []EntryTimes) *DailyStats {
	stats := &DailyStats{
		Date:       truncateDay(day),
		LocationID: locationID,
		TotalJoins: len(entries),
	}

	var totalWait float64
	var waited int
	hourCounts := make(map[int]int)

	for _, e := range entries {
		switch e.Status {
		case statusCompleted:
			stats.TotalServed++
			if e.CalledAt != nil {
				totalWait += e.CalledAt.Sub(e.JoinedAt).Minutes()
				waited++
			}
		case statusNoShow:
			stats.TotalNoShows++
		case statusCancelled:
			stats.TotalCancelled++
		}
		hourCounts[e.JoinedAt.UTC().Hour()]++
	}

	if waited > 0 {
		avg := totalWait / float64(waited)
		stats.AvgWaitMinutes = &avg
	}

	if len(hourCounts) > 0 {
		hours := make([]int, 0, len(hourCounts))
		for h := range hourCounts {
			hours = append(hours, h)
		}
		sort.Ints(hours)

		peak := hours[0]
		for _, h := range hours[1:] {
			if hourCounts[h] > hourCounts[peak] {
				peak = h
			}
		}
		stats.PeakHour = &peak
	}

	return stats
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
