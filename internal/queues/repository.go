package queues

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrQueueNotFound    = errors.New("queue not found")
	ErrEntryNotFound    = errors.New("entry not found")
	ErrLocationNotFound = errors.New("location not found")
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// Transaction runs fn with a repository bound to one database transaction
	Transaction(ctx context.Context, fn func(repo Repository) error) error

	// Queues
	CreateQueue(ctx context.Context, queue *Queue) error
	GetQueue(ctx context.Context, id uuid.UUID) (*Queue, error)
	LockQueue(ctx context.Context, id uuid.UUID) (*Queue, error)
	UpdateQueue(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	ListActiveQueues(ctx context.Context, locationID uuid.UUID) ([]Queue, error)
	// LocationOwner returns the owner of a location or ErrLocationNotFound
	LocationOwner(ctx context.Context, locationID uuid.UUID) (uuid.UUID, error)
	WaitingCounts(ctx context.Context, queueIDs []uuid.UUID) (map[uuid.UUID]int, error)

	// Entries
	NextTicketNumber(ctx context.Context, queueID uuid.UUID) (int, error)
	CreateEntry(ctx context.Context, entry *Entry) error
	GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error)
	SaveStatus(ctx context.Context, entry *Entry) error
	SaveStatusIf(ctx context.Context, entry *Entry, expected Status) (bool, error)
	Position(ctx context.Context, entry *Entry) (int, error)
	CountByStatus(ctx context.Context, queueID uuid.UUID, statuses ...Status) (int, error)
	ListByStatus(ctx context.Context, queueID uuid.UUID, statuses ...Status) ([]Entry, error)
	OldestWaiting(ctx context.Context, queueID uuid.UUID) (*Entry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Transaction(ctx context.Context, fn func(repo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// ================== QUEUES ==================

func (r *repository) CreateQueue(ctx context.Context, queue *Queue) error {
	return r.db.WithContext(ctx).Create(queue).Error
}

func (r *repository) queueWithLocation(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&Queue{}).
		Select("queues.*, locations.name AS location_name").
		Joins("LEFT JOIN locations ON locations.id = queues.location_id")
}

func (r *repository) GetQueue(ctx context.Context, id uuid.UUID) (*Queue, error) {
	var queue Queue
	if err := r.queueWithLocation(ctx).Where("queues.id = ?", id).Take(&queue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueueNotFound
		}
		return nil, err
	}
	return &queue, nil
}

// LockQueue loads the queue holding its row lock until the transaction ends
func (r *repository) LockQueue(ctx context.Context, id uuid.UUID) (*Queue, error) {
	var queue Queue
	err := r.queueWithLocation(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "queues"}}).
		Where("queues.id = ?", id).
		Take(&queue).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQueueNotFound
		}
		return nil, err
	}
	return &queue, nil
}

func (r *repository) UpdateQueue(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&Queue{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQueueNotFound
	}
	return nil
}

func (r *repository) ListActiveQueues(ctx context.Context, locationID uuid.UUID) ([]Queue, error) {
	var queues []Queue
	err := r.queueWithLocation(ctx).
		Where("queues.location_id = ? AND queues.is_active = ?", locationID, true).
		Order("queues.created_at ASC").
		Find(&queues).Error
	return queues, err
}

func (r *repository) LocationOwner(ctx context.Context, locationID uuid.UUID) (uuid.UUID, error) {
	var owners []uuid.UUID
	err := r.db.WithContext(ctx).Table("locations").Where("id = ?", locationID).Limit(1).Pluck("owner_id", &owners).Error
	if err != nil {
		return uuid.Nil, err
	}
	if len(owners) == 0 {
		return uuid.Nil, ErrLocationNotFound
	}
	return owners[0], nil
}

func (r *repository) WaitingCounts(ctx context.Context, queueIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(queueIDs))
	if len(queueIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		QueueID uuid.UUID
		Count   int
	}
	err := r.db.WithContext(ctx).
		Model(&Entry{}).
		Select("queue_id, COUNT(*) AS count").
		Where("queue_id IN ? AND status = ?", queueIDs, StatusWaiting).
		Group("queue_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.QueueID] = row.Count
	}
	return counts, nil
}

// ================== ENTRIES ==================

func (r *repository) NextTicketNumber(ctx context.Context, queueID uuid.UUID) (int, error) {
	var maxTicket int
	err := r.db.WithContext(ctx).
		Model(&Entry{}).
		Select("COALESCE(MAX(ticket_number), 0)").
		Where("queue_id = ?", queueID).
		Scan(&maxTicket).Error
	if err != nil {
		return 0, err
	}
	return maxTicket + 1, nil
}

func (r *repository) CreateEntry(ctx context.Context, entry *Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) GetEntry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	var entry Entry
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// SaveStatus writes the status and lifecycle timestamps of entry
func (r *repository) SaveStatus(ctx context.Context, entry *Entry) error {
	result := r.db.WithContext(ctx).
		Model(entry).
		Select("status", "called_at", "served_at", "cancelled_at", "updated_at").
		Updates(entry)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// SaveStatusIf writes like SaveStatus but only while the stored status is still expected
func (r *repository) SaveStatusIf(ctx context.Context, entry *Entry, expected Status) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(entry).
		Where("status = ?", expected).
		Select("status", "called_at", "served_at", "cancelled_at", "updated_at").
		Updates(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Position ranks a WAITING entry: earlier joins first, ticket number breaks ties.
// The entry counts itself, so the head of line is 1.
func (r *repository) Position(ctx context.Context, entry *Entry) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Entry{}).
		Where("queue_id = ? AND status = ?", entry.QueueID, StatusWaiting).
		Where("(joined_at < ? OR (joined_at = ? AND ticket_number <= ?))", entry.JoinedAt, entry.JoinedAt, entry.TicketNumber).
		Count(&count).Error
	return int(count), err
}

func (r *repository) CountByStatus(ctx context.Context, queueID uuid.UUID, statuses ...Status) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Entry{}).
		Where("queue_id = ? AND status IN ?", queueID, statuses).
		Count(&count).Error
	return int(count), err
}

// ListByStatus returns entries in arrival order
func (r *repository) ListByStatus(ctx context.Context, queueID uuid.UUID, statuses ...Status) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("queue_id = ? AND status IN ?", queueID, statuses).
		Order("joined_at ASC, ticket_number ASC").
		Find(&entries).Error
	return entries, err
}

// OldestWaiting returns the head of line, or nil when nobody is waiting
func (r *repository) OldestWaiting(ctx context.Context, queueID uuid.UUID) (*Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Where("queue_id = ? AND status = ?", queueID, StatusWaiting).
		Order("joined_at ASC, ticket_number ASC").
		Limit(1).
		Find(&entries).Error
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}
