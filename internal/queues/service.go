package queues

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ewait/internal/analytics"
	"ewait/internal/notifications"
	"ewait/internal/shared/apperrors"
	"ewait/internal/shared/constants"
	"ewait/internal/shared/utils/validation"
	"ewait/pkg/cache"
	"ewait/pkg/logger"
)

const (
	MessageCalledNext  = "Called next customer"
	MessageNoneWaiting = "No one waiting"

	// almost-turn SMS always says one person is ahead
	almostTurnPeopleAhead = 1
)

type Service interface {
	SetCacheService(cacheService cache.Service)

	Join(ctx context.Context, req JoinQueueRequest) (*JoinResponse, error)
	GetStatus(ctx context.Context, entryID uuid.UUID) (*EntryStatusResponse, error)
	CallNext(ctx context.Context, queueID uuid.UUID) (*CallNextResult, error)
	OverrideStatus(ctx context.Context, entryID uuid.UUID, status string) (*Entry, error)
	Transition(ctx context.Context, entryID uuid.UUID, action Action) (*Entry, error)

	GetQueue(ctx context.Context, queueID uuid.UUID) (*QueueBoard, error)
	GetQueueByCode(ctx context.Context, code string) (*QueueSummary, error)
	ListByLocation(ctx context.Context, locationID uuid.UUID) ([]QueueSummary, error)
	CreateQueue(ctx context.Context, req CreateQueueRequest) (*Queue, error)
	UpdateQueue(ctx context.Context, queueID uuid.UUID, req UpdateQueueRequest) (*Queue, error)
}

// Options tune the queue service. Zero values are usable.
type Options struct {
	NotifyOnJoin bool
	Now          func() time.Time
	Logger       *logger.Logger
}

type service struct {
	repo         Repository
	dispatcher   notifications.Dispatcher
	tracker      analytics.Tracker
	cacheService cache.Service
	log          *logger.Logger
	now          func() time.Time
	notifyOnJoin bool
}

func NewService(repo Repository, dispatcher notifications.Dispatcher, tracker analytics.Tracker, opts Options) Service {
	if dispatcher == nil {
		dispatcher = notifications.NopDispatcher{}
	}
	if tracker == nil {
		tracker = nopTracker{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetDefault()
	}
	return &service{
		repo:         repo,
		dispatcher:   dispatcher,
		tracker:      tracker,
		log:          opts.Logger,
		now:          opts.Now,
		notifyOnJoin: opts.NotifyOnJoin,
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// clock returns UTC at microsecond precision, the resolution Postgres keeps
func (s *service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// ================== ENTRY STORE ==================

func (s *service) Join(ctx context.Context, req JoinQueueRequest) (*JoinResponse, error) {
	if strings.TrimSpace(req.QueueID) == "" {
		return nil, apperrors.Validation("queueId is required")
	}
	if req.PartySize != nil && *req.PartySize < 1 {
		return nil, apperrors.Validation("partySize must be at least 1")
	}
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	queueID, err := uuid.Parse(strings.TrimSpace(req.QueueID))
	if err != nil {
		return nil, apperrors.NotFound("Queue not found")
	}

	partySize := 1
	if req.PartySize != nil {
		partySize = *req.PartySize
	}

	var (
		queue    *Queue
		entry    *Entry
		position int
	)
	err = s.repo.Transaction(ctx, func(repo Repository) error {
		q, err := repo.LockQueue(ctx, queueID)
		if err != nil {
			return queueLookupError(err)
		}
		if !q.IsActive {
			return apperrors.InvalidState("Queue is not accepting entries")
		}

		ticket, err := repo.NextTicketNumber(ctx, q.ID)
		if err != nil {
			return fmt.Errorf("failed to assign ticket: %w", err)
		}

		e := &Entry{
			QueueID:      q.ID,
			TicketNumber: ticket,
			Name:         trimmed(req.Name),
			Phone:        trimmed(req.Phone),
			Email:        trimmed(req.Email),
			PartySize:    partySize,
			Status:       StatusWaiting,
			JoinedAt:     s.clock(),
		}
		if err := repo.CreateEntry(ctx, e); err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}

		position, err = repo.Position(ctx, e)
		if err != nil {
			return fmt.Errorf("failed to compute position: %w", err)
		}

		queue, entry = q, e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogEntryJoined(ctx, queue.ID.String(), entry.ID.String(), entry.TicketNumber, position)
	s.tracker.Track(ctx, analytics.EventQueueJoin, analytics.Refs{
		LocationID: &queue.LocationID,
		QueueID:    &queue.ID,
		EntryID:    &entry.ID,
		Metadata: map[string]interface{}{
			"ticketNumber": entry.TicketNumber,
			"partySize":    entry.PartySize,
			"hasPhone":     entry.Phone != nil,
		},
	})
	if s.notifyOnJoin {
		s.notify(ctx, notifications.KindJoined, entry, queue, func(n *notifications.Notification) {
			n.Position = position
		})
	}

	return &JoinResponse{
		ID:                   entry.ID,
		TicketNumber:         entry.TicketNumber,
		Position:             position,
		EstimatedWaitMinutes: (position - 1) * queue.AvgServiceTime,
		QueueName:            queue.Name,
		LocationName:         queue.LocationName,
	}, nil
}

// ================== POSITION CALCULATOR ==================

func (s *service) GetStatus(ctx context.Context, entryID uuid.UUID) (*EntryStatusResponse, error) {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, entryLookupError(err)
	}

	queue, err := s.repo.GetQueue(ctx, entry.QueueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load queue for entry %s: %w", entry.ID, err)
	}

	resp := &EntryStatusResponse{
		ID:           entry.ID,
		TicketNumber: entry.TicketNumber,
		Status:       entry.Status,
		JoinedAt:     entry.JoinedAt,
		CalledAt:     entry.CalledAt,
		QueueName:    queue.Name,
		LocationName: queue.LocationName,
	}

	if entry.Status == StatusWaiting {
		position, err := s.repo.Position(ctx, entry)
		if err != nil {
			return nil, fmt.Errorf("failed to compute position: %w", err)
		}
		resp.Position = position
		resp.PeopleAhead = position - 1
		resp.EstimatedWaitMinutes = resp.PeopleAhead * queue.AvgServiceTime
	}

	return resp, nil
}

// ================== CALL-NEXT ==================

func (s *service) CallNext(ctx context.Context, queueID uuid.UUID) (*CallNextResult, error) {
	var (
		queue   *Queue
		noShows []Entry
		called  *Entry
		next    *Entry
		result  *CallNextResult
	)

	err := s.repo.Transaction(ctx, func(repo Repository) error {
		q, err := repo.LockQueue(ctx, queueID)
		if err != nil {
			return queueLookupError(err)
		}
		queue = q

		previous, err := repo.ListByStatus(ctx, q.ID, StatusCalled)
		if err != nil {
			return fmt.Errorf("failed to load called entries: %w", err)
		}

		now := s.clock()
		for i := range previous {
			previous[i].Status = StatusNoShow
			previous[i].stamp(StatusNoShow, now)
			if err := repo.SaveStatus(ctx, &previous[i]); err != nil {
				return fmt.Errorf("failed to mark no-show: %w", err)
			}
		}
		noShows = previous

		head, err := repo.OldestWaiting(ctx, q.ID)
		if err != nil {
			return fmt.Errorf("failed to find next entry: %w", err)
		}
		if head == nil {
			result = &CallNextResult{Message: MessageNoneWaiting}
			return nil
		}

		head.Status = StatusCalled
		head.stamp(StatusCalled, now)
		if err := repo.SaveStatus(ctx, head); err != nil {
			return fmt.Errorf("failed to call entry: %w", err)
		}
		called = head

		waiting, err := repo.CountByStatus(ctx, q.ID, StatusWaiting)
		if err != nil {
			return fmt.Errorf("failed to count waiting entries: %w", err)
		}
		if next, err = repo.OldestWaiting(ctx, q.ID); err != nil {
			return fmt.Errorf("failed to find head of line: %w", err)
		}

		result = &CallNextResult{Message: MessageCalledNext, Entry: head, WaitingCount: waiting}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range noShows {
		entry := &noShows[i]
		s.notify(ctx, notifications.KindNoShow, entry, queue, nil)
		s.track(ctx, analytics.EventQueueNoShow, queue, entry)
	}
	if called != nil {
		s.notify(ctx, notifications.KindYourTurn, called, queue, nil)
		s.track(ctx, analytics.EventQueueCall, queue, called)
	}
	if next != nil {
		s.notify(ctx, notifications.KindAlmostTurn, next, queue, func(n *notifications.Notification) {
			n.PeopleAhead = almostTurnPeopleAhead
		})
	}

	calledID := ""
	if called != nil {
		calledID = called.ID.String()
	}
	s.log.LogEntryCalled(ctx, queue.ID.String(), calledID, len(noShows), result.WaitingCount)

	return result, nil
}

// ================== STATUS CHANGES ==================

// OverrideStatus sets any valid status regardless of the current one
func (s *service) OverrideStatus(ctx context.Context, entryID uuid.UUID, status string) (*Entry, error) {
	target := Status(strings.TrimSpace(status))
	if !target.IsValid() {
		return nil, apperrors.Validation(fmt.Sprintf("Invalid status %q", status))
	}

	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, entryLookupError(err)
	}

	previous := entry.Status
	entry.Status = target
	entry.stamp(target, s.clock())
	if err := s.repo.SaveStatus(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to update entry status: %w", err)
	}

	s.log.LogStatusOverride(ctx, entry.ID.String(), string(previous), string(target))
	return entry, nil
}

// Transition applies a guarded action from the lifecycle table
func (s *service) Transition(ctx context.Context, entryID uuid.UUID, action Action) (*Entry, error) {
	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return nil, entryLookupError(err)
	}

	current := entry.Status
	target, ok := NextStatus(action, current)
	if !ok {
		return nil, apperrors.InvalidState(fmt.Sprintf("Cannot %s an entry that is %s", action, current))
	}

	entry.Status = target
	entry.stamp(target, s.clock())
	updated, err := s.repo.SaveStatusIf(ctx, entry, current)
	if err != nil {
		return nil, fmt.Errorf("failed to update entry status: %w", err)
	}
	if !updated {
		return nil, apperrors.InvalidState("Entry status changed, please refresh")
	}

	if event, ok := actionEvents[action]; ok {
		queue, err := s.repo.GetQueue(ctx, entry.QueueID)
		if err == nil {
			s.track(ctx, event, queue, entry)
		}
	}
	return entry, nil
}

var actionEvents = map[Action]analytics.EventName{
	ActionCall:     analytics.EventQueueCall,
	ActionComplete: analytics.EventQueueComplete,
	ActionNoShow:   analytics.EventQueueNoShow,
	ActionCancel:   analytics.EventQueueLeave,
}

// ================== QUEUE REGISTRY ==================

// GetQueue returns the board: CALLED, then SERVING, then the line, each in arrival order
func (s *service) GetQueue(ctx context.Context, queueID uuid.UUID) (*QueueBoard, error) {
	queue, err := s.repo.GetQueue(ctx, queueID)
	if err != nil {
		return nil, queueLookupError(err)
	}

	entries, err := s.repo.ListByStatus(ctx, queue.ID, StatusCalled, StatusServing, StatusWaiting)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	var called, serving, waiting []Entry
	for _, e := range entries {
		switch e.Status {
		case StatusCalled:
			called = append(called, e)
		case StatusServing:
			serving = append(serving, e)
		default:
			waiting = append(waiting, e)
		}
	}

	board := &QueueBoard{Queue: *queue, Entries: make([]Entry, 0, len(entries))}
	board.Entries = append(board.Entries, called...)
	board.Entries = append(board.Entries, serving...)
	board.Entries = append(board.Entries, waiting...)
	board.WaitingCount = len(waiting)

	if len(board.Entries) > 0 && board.Entries[0].Status.IsActive() {
		called := board.Entries[0]
		board.CalledEntry = &called
	}
	return board, nil
}

// GetQueueByCode resolves the code customers scan or type. The code is the queue id.
// Only the queue row is cached; the waiting count is always fresh.
func (s *service) GetQueueByCode(ctx context.Context, code string) (*QueueSummary, error) {
	queueID, err := uuid.Parse(strings.TrimSpace(code))
	if err != nil {
		return nil, apperrors.NotFound("Queue not found")
	}

	queue, err := s.cachedQueue(ctx, queueID)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.WaitingCounts(ctx, []uuid.UUID{queue.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to count waiting entries: %w", err)
	}
	return &QueueSummary{Queue: *queue, WaitingCount: counts[queue.ID]}, nil
}

func (s *service) cachedQueue(ctx context.Context, queueID uuid.UUID) (*Queue, error) {
	load := func() (*Queue, error) {
		queue, err := s.repo.GetQueue(ctx, queueID)
		if err != nil {
			return nil, queueLookupError(err)
		}
		return queue, nil
	}

	if s.cacheService == nil {
		return load()
	}

	var queue Queue
	err := s.cacheService.GetOrSet(ctx, constants.BuildQueueByCodeKey(queueID.String()), constants.TTL_QUEUE_BY_CODE,
		func() (interface{}, error) {
			return load()
		}, &queue)
	if err != nil {
		return nil, err
	}
	return &queue, nil
}

func (s *service) ListByLocation(ctx context.Context, locationID uuid.UUID) ([]QueueSummary, error) {
	queues, err := s.repo.ListActiveQueues(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queues: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(queues))
	for _, q := range queues {
		ids = append(ids, q.ID)
	}
	counts, err := s.repo.WaitingCounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count waiting entries: %w", err)
	}

	summaries := make([]QueueSummary, 0, len(queues))
	for _, q := range queues {
		summaries = append(summaries, QueueSummary{Queue: q, WaitingCount: counts[q.ID]})
	}
	return summaries, nil
}

func (s *service) CreateQueue(ctx context.Context, req CreateQueueRequest) (*Queue, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	avg := DefaultAvgServiceTime
	if req.AvgServiceTime != nil {
		if *req.AvgServiceTime < 1 {
			return nil, apperrors.Validation("avgServiceTime must be at least 1")
		}
		avg = *req.AvgServiceTime
	}

	locationID := uuid.MustParse(req.LocationID)
	ownerID, err := s.repo.LocationOwner(ctx, locationID)
	if err != nil {
		if errors.Is(err, ErrLocationNotFound) {
			return nil, apperrors.NotFound("Location not found")
		}
		return nil, fmt.Errorf("failed to check location: %w", err)
	}

	queue := &Queue{
		Name:           strings.TrimSpace(req.Name),
		Description:    trimmed(req.Description),
		LocationID:     locationID,
		AvgServiceTime: avg,
		IsActive:       true,
	}
	if err := s.repo.CreateQueue(ctx, queue); err != nil {
		return nil, fmt.Errorf("failed to create queue: %w", err)
	}
	s.invalidateCache(ctx, ownerID)

	s.tracker.Track(ctx, analytics.EventQueueCreate, analytics.Refs{LocationID: &queue.LocationID, QueueID: &queue.ID})
	return queue, nil
}

func (s *service) UpdateQueue(ctx context.Context, queueID uuid.UUID, req UpdateQueueRequest) (*Queue, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = trimmed(req.Description)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.AvgServiceTime != nil {
		if *req.AvgServiceTime < 1 {
			return nil, apperrors.Validation("avgServiceTime must be at least 1")
		}
		updates["avg_service_time"] = *req.AvgServiceTime
	}

	if len(updates) > 0 {
		if err := s.repo.UpdateQueue(ctx, queueID, updates); err != nil {
			return nil, queueLookupError(err)
		}
	}

	queue, err := s.repo.GetQueue(ctx, queueID)
	if err != nil {
		return nil, queueLookupError(err)
	}

	if len(updates) > 0 {
		ownerID, err := s.repo.LocationOwner(ctx, queue.LocationID)
		if err != nil {
			s.log.WarnContext(ctx, "queue owner lookup failed", "queue_id", queueID.String(), "error", err.Error())
		}
		s.invalidateCache(ctx, ownerID, queueID)
	}
	return queue, nil
}

// ================== HELPERS ==================

// invalidateCache drops the owner's location listing and the code lookups of queueIDs
func (s *service) invalidateCache(ctx context.Context, ownerID uuid.UUID, queueIDs ...uuid.UUID) {
	if s.cacheService == nil {
		return
	}

	keys := make([]string, 0, len(queueIDs)+1)
	if ownerID != uuid.Nil {
		keys = append(keys, constants.BuildLocationsByOwnerKey(ownerID.String()))
	}
	for _, id := range queueIDs {
		keys = append(keys, constants.BuildQueueByCodeKey(id.String()))
	}
	if err := s.cacheService.Delete(ctx, keys...); err != nil {
		s.log.WarnContext(ctx, "queue cache invalidation failed", "owner_id", ownerID.String(), "error", err.Error())
	}
}

func (s *service) notify(ctx context.Context, kind notifications.Kind, entry *Entry, queue *Queue, customize func(*notifications.Notification)) {
	phone := entry.PhoneNumber()
	if phone == "" {
		return
	}

	n := notifications.Notification{
		Kind:         kind,
		Phone:        phone,
		EntryID:      entry.ID,
		QueueID:      queue.ID,
		TicketNumber: entry.TicketNumber,
		QueueName:    queue.Name,
		LocationName: queue.LocationName,
	}
	if customize != nil {
		customize(&n)
	}
	s.dispatcher.Dispatch(ctx, n)
}

func (s *service) track(ctx context.Context, event analytics.EventName, queue *Queue, entry *Entry) {
	s.tracker.Track(ctx, event, analytics.Refs{
		LocationID: &queue.LocationID,
		QueueID:    &queue.ID,
		EntryID:    &entry.ID,
		Metadata:   map[string]interface{}{"ticketNumber": entry.TicketNumber},
	})
}

func queueLookupError(err error) error {
	if errors.Is(err, ErrQueueNotFound) {
		return apperrors.NotFound("Queue not found")
	}
	return fmt.Errorf("failed to load queue: %w", err)
}

func entryLookupError(err error) error {
	if errors.Is(err, ErrEntryNotFound) {
		return apperrors.NotFound("Entry not found")
	}
	return fmt.Errorf("failed to load entry: %w", err)
}

// trimmed turns blank optional strings into nil
func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

type nopTracker struct{}

func (nopTracker) Track(context.Context, analytics.EventName, analytics.Refs) {}
