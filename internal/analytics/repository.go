package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository reads queue tables by name so this package stays free of queue imports
type Repository interface {
	CreateEvent(ctx context.Context, event *Event) error

	OwnerLocations(ctx context.Context, ownerID uuid.UUID) ([]LocationRef, error)
	AllLocationIDs(ctx context.Context) ([]uuid.UUID, error)

	StatusCounts(ctx context.Context, locationIDs []uuid.UUID, since time.Time) ([]StatusCount, error)
	DailyStatsSince(ctx context.Context, locationIDs []uuid.UUID, since time.Time) ([]DailyStats, error)
	RecentEntries(ctx context.Context, locationIDs []uuid.UUID, limit int) ([]RecentEntry, error)
	TopQueues(ctx context.Context, locationIDs []uuid.UUID, since time.Time, limit int) ([]TopQueue, error)

	EntriesJoinedBetween(ctx context.Context, locationID uuid.UUID, start, end time.Time) ([]EntryTimes, error)
	UpsertDailyStats(ctx context.Context, stats *DailyStats) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEvent(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) OwnerLocations(ctx context.Context, ownerID uuid.UUID) ([]LocationRef, error) {
	var refs []LocationRef
	err := r.db.WithContext(ctx).
		Table("locations").
		Select("id, name").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Scan(&refs).Error
	return refs, err
}

func (r *repository) AllLocationIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Table("locations").Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) entriesInLocations(ctx context.Context, locationIDs []uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("queue_entries").
		Joins("JOIN queues ON queues.id = queue_entries.queue_id").
		Where("queues.location_id IN ?", locationIDs)
}

func (r *repository) StatusCounts(ctx context.Context, locationIDs []uuid.UUID, since time.Time) ([]StatusCount, error) {
	var counts []StatusCount
	err := r.entriesInLocations(ctx, locationIDs).
		Select("queue_entries.status AS status, COUNT(*) AS count").
		Where("queue_entries.joined_at >= ?", since).
		Group("queue_entries.status").
		Scan(&counts).Error
	return counts, err
}

func (r *repository) DailyStatsSince(ctx context.Context, locationIDs []uuid.UUID, since time.Time) ([]DailyStats, error) {
	var stats []DailyStats
	err := r.db.WithContext(ctx).
		Where("location_id IN ? AND date >= ?", locationIDs, since).
		Order("date ASC").
		Find(&stats).Error
	return stats, err
}

func (r *repository) RecentEntries(ctx context.Context, locationIDs []uuid.UUID, limit int) ([]RecentEntry, error) {
	var entries []RecentEntry
	err := r.entriesInLocations(ctx, locationIDs).
		Select("queue_entries.id, queue_entries.ticket_number, queue_entries.name, queue_entries.status, queue_entries.joined_at, queues.name AS queue_name").
		Order("queue_entries.joined_at DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}

func (r *repository) TopQueues(ctx context.Context, locationIDs []uuid.UUID, since time.Time, limit int) ([]TopQueue, error) {
	var top []TopQueue
	err := r.entriesInLocations(ctx, locationIDs).
		Select("queues.id AS queue_id, queues.name AS queue_name, COUNT(*) AS count").
		Where("queue_entries.joined_at >= ?", since).
		Group("queues.id, queues.name").
		Order("count DESC").
		Limit(limit).
		Scan(&top).Error
	return top, err
}

func (r *repository) EntriesJoinedBetween(ctx context.Context, locationID uuid.UUID, start, end time.Time) ([]EntryTimes, error) {
	var entries []EntryTimes
	err := r.entriesInLocations(ctx, []uuid.UUID{locationID}).
		Select("queue_entries.status, queue_entries.joined_at, queue_entries.called_at").
		Where("queue_entries.joined_at >= ? AND queue_entries.joined_at < ?", start, end).
		Scan(&entries).Error
	return entries, err
}

func (r *repository) UpsertDailyStats(ctx context.Context, stats *DailyStats) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}, {Name: "location_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_joins", "total_served", "total_no_shows", "total_cancelled",
			"avg_wait_minutes", "peak_hour", "updated_at",
		}),
	}).Create(stats).Error
}
