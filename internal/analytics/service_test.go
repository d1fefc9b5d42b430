package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ewait/internal/shared/apperrors"
	"ewait/internal/shared/testutil"
)

// Minimal shapes of the tables owned by the locations and queues packages.

type testLocation struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid"`
	OwnerID   uuid.UUID `gorm:"type:uuid"`
	Name      string
	CreatedAt time.Time
}

func (testLocation) TableName() string { return "locations" }

type testQueue struct {
	ID         uuid.UUID `gorm:"primaryKey;type:uuid"`
	LocationID uuid.UUID `gorm:"type:uuid"`
	Name       string
}

func (testQueue) TableName() string { return "queues" }

type testEntry struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid"`
	QueueID      uuid.UUID `gorm:"type:uuid"`
	TicketNumber int
	Name         *string
	Status       string
	JoinedAt     time.Time
	CalledAt     *time.Time
}

func (testEntry) TableName() string { return "queue_entries" }

type fixture struct {
	db       *gorm.DB
	svc      Service
	owner    uuid.UUID
	location uuid.UUID
	queue    uuid.UUID
	ticket   int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t, &testLocation{}, &testQueue{}, &testEntry{}, &Event{}, &DailyStats{})

	f := &fixture{
		db:       db,
		svc:      NewService(NewRepository(db)),
		owner:    uuid.New(),
		location: uuid.New(),
		queue:    uuid.New(),
	}
	require.NoError(t, db.Create(&testLocation{ID: f.location, OwnerID: f.owner, Name: "Ikeja Branch", CreatedAt: time.Now().UTC()}).Error)
	require.NoError(t, db.Create(&testQueue{ID: f.queue, LocationID: f.location, Name: "Main Queue"}).Error)
	return f
}

func (f *fixture) addEntry(t *testing.T, status string, joinedAt time.Time, calledAt *time.Time) {
	t.Helper()
	f.ticket++
	require.NoError(t, f.db.Create(&testEntry{
		ID:           uuid.New(),
		QueueID:      f.queue,
		TicketNumber: f.ticket,
		Status:       status,
		JoinedAt:     joinedAt,
		CalledAt:     calledAt,
	}).Error)
}

func ptrTime(t time.Time) *time.Time { return &t }

func TestComputeDailyStats(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	location := uuid.New()

	entries := []EntryTimes{
		{Status: statusCompleted, JoinedAt: day.Add(9 * time.Hour), CalledAt: ptrTime(day.Add(9*time.Hour + 10*time.Minute))},
		{Status: statusCompleted, JoinedAt: day.Add(9*time.Hour + 5*time.Minute), CalledAt: ptrTime(day.Add(9*time.Hour + 25*time.Minute))},
		{Status: statusCompleted, JoinedAt: day.Add(11 * time.Hour)},
		{Status: statusNoShow, JoinedAt: day.Add(14 * time.Hour)},
		{Status: statusCancelled, JoinedAt: day.Add(14 * time.Hour)},
		{Status: statusWaiting, JoinedAt: day.Add(16 * time.Hour)},
	}

	stats := ComputeDailyStats(location, day.Add(13*time.Hour), entries)

	assert.Equal(t, day, stats.Date)
	assert.Equal(t, location, stats.LocationID)
	assert.Equal(t, 6, stats.TotalJoins)
	assert.Equal(t, 3, stats.TotalServed)
	assert.Equal(t, 1, stats.TotalNoShows)
	assert.Equal(t, 1, stats.TotalCancelled)
	require.NotNil(t, stats.AvgWaitMinutes)
	assert.InDelta(t, 15.0, *stats.AvgWaitMinutes, 0.001)
	require.NotNil(t, stats.PeakHour)
	// 09 and 14 both have two joins; the earlier hour wins
	assert.Equal(t, 9, *stats.PeakHour)
}

func TestComputeDailyStatsEmpty(t *testing.T) {
	stats := ComputeDailyStats(uuid.New(), time.Now(), nil)

	assert.Zero(t, stats.TotalJoins)
	assert.Nil(t, stats.AvgWaitMinutes)
	assert.Nil(t, stats.PeakHour)
}

func TestGetSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	f.addEntry(t, statusWaiting, now.Add(-time.Hour), nil)
	f.addEntry(t, statusWaiting, now.Add(-50*time.Minute), nil)
	f.addEntry(t, statusCompleted, now.Add(-2*time.Hour), ptrTime(now.Add(-110*time.Minute)))
	f.addEntry(t, statusNoShow, now.Add(-3*time.Hour), nil)
	// outside the window
	f.addEntry(t, statusCompleted, now.AddDate(0, 0, -30), nil)

	summary, err := f.svc.GetSummary(ctx, f.owner, 7, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.Summary.TotalJoins)
	assert.Equal(t, int64(2), summary.Summary.Waiting)
	assert.Equal(t, int64(1), summary.Summary.Completed)
	assert.Equal(t, int64(1), summary.Summary.NoShows)
	assert.Equal(t, 7, summary.Period.Days)
	require.Len(t, summary.Locations, 1)
	assert.Equal(t, "Ikeja Branch", summary.Locations[0].Name)
	require.Len(t, summary.TopQueues, 1)
	assert.Equal(t, "Main Queue", summary.TopQueues[0].QueueName)
	assert.Equal(t, int64(4), summary.TopQueues[0].Count)
	assert.Len(t, summary.RecentEntries, 5)
}

func TestGetSummaryRejectsForeignLocation(t *testing.T) {
	f := newFixture(t)

	foreign := uuid.New()
	_, err := f.svc.GetSummary(context.Background(), f.owner, 7, &foreign)

	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestGetSummaryWithoutLocations(t *testing.T) {
	f := newFixture(t)

	summary, err := f.svc.GetSummary(context.Background(), uuid.New(), 0, nil)
	require.NoError(t, err)

	assert.Equal(t, defaultSummaryDays, summary.Period.Days)
	assert.Empty(t, summary.Locations)
	assert.Zero(t, summary.Summary.TotalJoins)
}

func TestUpdateDailyStatsUpserts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	f.addEntry(t, statusCompleted, day.Add(10*time.Hour), ptrTime(day.Add(10*time.Hour+6*time.Minute)))

	_, err := f.svc.UpdateDailyStats(ctx, f.location, day)
	require.NoError(t, err)

	f.addEntry(t, statusNoShow, day.Add(12*time.Hour), nil)
	stats, err := f.svc.UpdateDailyStats(ctx, f.location, day.Add(20*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalJoins)

	var rows []DailyStats
	require.NoError(t, f.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].TotalJoins)
	assert.Equal(t, 1, rows[0].TotalServed)
	assert.Equal(t, 1, rows[0].TotalNoShows)
}

func TestRollupDayCoversEveryLocation(t *testing.T) {
	f := newFixture(t)
	other := uuid.New()
	require.NoError(t, f.db.Create(&testLocation{ID: other, OwnerID: f.owner, Name: "Lekki", CreatedAt: time.Now().UTC()}).Error)

	written, err := f.svc.RollupDay(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, written)
}

func TestTrackStoresMetadata(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.Track(ctx, EventQueueJoin, Refs{
		LocationID: &f.location,
		QueueID:    &f.queue,
		Metadata:   map[string]interface{}{"partySize": 2},
	})

	var events []Event
	require.NoError(t, f.db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, EventQueueJoin, events[0].Event)
	assert.JSONEq(t, `{"partySize":2}`, events[0].Metadata)
	require.NotNil(t, events[0].QueueID)
	assert.Equal(t, f.queue, *events[0].QueueID)
}
