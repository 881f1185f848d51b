package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"example.com/tickettracker/internal/collector"
	"example.com/tickettracker/internal/database"
	"example.com/tickettracker/internal/models"
	"example.com/tickettracker/internal/repositories"
	"example.com/tickettracker/internal/ticketmaster"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeSource struct {
	details map[string]*ticketmaster.RawEvent
}

func (f *fakeSource) SearchEvents(ctx context.Context, filters ticketmaster.SearchFilters) ([]ticketmaster.RawEvent, error) {
	return nil, nil
}

func (f *fakeSource) GetEventDetails(ctx context.Context, eventID string) (*ticketmaster.RawEvent, error) {
	return f.details[eventID], nil
}

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.SetupModels(gdb))
	return database.FromGorm(gdb)
}

func newTracker(t *testing.T, db *database.Database, details map[string]*ticketmaster.RawEvent) *Tracker {
	t.Helper()
	source := &fakeSource{details: details}
	return New(source, db, collector.New(source, db))
}

func rawDetail(t *testing.T, id, name string) *ticketmaster.RawEvent {
	t.Helper()
	payload := fmt.Sprintf(`{
		"id": %q, "name": %q,
		"priceRanges": [{"currency": "USD", "min": 40.0, "max": 120.0}]
	}`, id, name)
	var event ticketmaster.RawEvent
	require.NoError(t, json.Unmarshal([]byte(payload), &event))
	return &event
}

func TestTrackFetchesUnknownEvent(t *testing.T) {
	db := newTestDB(t)
	tr := newTracker(t, db, map[string]*ticketmaster.RawEvent{
		"E1": rawDetail(t, "E1", "New Concert"),
	})

	target := 100.0
	result, err := tr.Track(context.Background(), "E1", "user@example.com", &target)
	require.NoError(t, err)
	assert.True(t, result.Tracked)
	assert.False(t, result.Reactivated)
	require.NotNil(t, result.Event)
	assert.Equal(t, "New Concert", result.Event.Name)

	session := db.DB()
	event, err := repositories.NewEventRepository().FindByID(session, "E1")
	require.NoError(t, err)
	require.NotNil(t, event)

	interest, err := repositories.NewUserInterestRepository().FindByEventAndEmail(session, "E1", "user@example.com")
	require.NoError(t, err)
	require.NotNil(t, interest)
	assert.True(t, interest.IsActive)
	require.NotNil(t, interest.TargetPrice)
	assert.Equal(t, 100.0, *interest.TargetPrice)

	// Fetch-and-store also captured a price snapshot
	snapshots, err := repositories.NewPriceSnapshotRepository().ListByEvent(session, "E1")
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)
}

func TestTrackUnknownUpstreamLeavesNoRow(t *testing.T) {
	db := newTestDB(t)
	tr := newTracker(t, db, map[string]*ticketmaster.RawEvent{})

	result, err := tr.Track(context.Background(), "missing", "user@example.com", nil)
	require.NoError(t, err)
	assert.False(t, result.Tracked)

	interest, err := repositories.NewUserInterestRepository().FindByEventAndEmail(db.DB(), "missing", "user@example.com")
	require.NoError(t, err)
	assert.Nil(t, interest)
}

func TestTrackExistingEventSkipsFetch(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, repositories.NewEventRepository().Create(db.DB(), &models.Event{
		ID:   "E1",
		Name: "Stored Concert",
	}))

	// No detail payload available: the tracker must not need one
	tr := newTracker(t, db, map[string]*ticketmaster.RawEvent{})

	result, err := tr.Track(context.Background(), "E1", "user@example.com", nil)
	require.NoError(t, err)
	assert.True(t, result.Tracked)
	assert.Equal(t, "Stored Concert", result.Event.Name)

	interest, err := repositories.NewUserInterestRepository().FindByEventAndEmail(db.DB(), "E1", "user@example.com")
	require.NoError(t, err)
	require.NotNil(t, interest)
	assert.Nil(t, interest.TargetPrice)
}

func TestTrackReactivatesDormantInterest(t *testing.T) {
	db := newTestDB(t)
	session := db.DB()
	require.NoError(t, repositories.NewEventRepository().Create(session, &models.Event{
		ID:   "E1",
		Name: "Concert",
	}))

	oldTarget := 80.0
	require.NoError(t, repositories.NewUserInterestRepository().Create(session, &models.UserInterest{
		EventID:     "E1",
		UserEmail:   "user@example.com",
		TargetPrice: &oldTarget,
		IsActive:    false,
	}))

	tr := newTracker(t, db, map[string]*ticketmaster.RawEvent{})

	newTarget := 60.0
	result, err := tr.Track(context.Background(), "E1", "user@example.com", &newTarget)
	require.NoError(t, err)
	assert.True(t, result.Tracked)
	assert.True(t, result.Reactivated)

	// Reactivated, target replaced, and still a single row
	interests, err := repositories.NewUserInterestRepository().All(session)
	require.NoError(t, err)
	require.Len(t, interests, 1)
	assert.True(t, interests[0].IsActive)
	require.NotNil(t, interests[0].TargetPrice)
	assert.Equal(t, 60.0, *interests[0].TargetPrice)
}

func TestTrackActiveInterestReplacesTargetWithoutReactivation(t *testing.T) {
	db := newTestDB(t)
	session := db.DB()
	require.NoError(t, repositories.NewEventRepository().Create(session, &models.Event{
		ID:   "E1",
		Name: "Concert",
	}))
	require.NoError(t, repositories.NewUserInterestRepository().Create(session, &models.UserInterest{
		EventID:   "E1",
		UserEmail: "user@example.com",
		IsActive:  true,
	}))

	tr := newTracker(t, db, map[string]*ticketmaster.RawEvent{})

	target := 45.0
	result, err := tr.Track(context.Background(), "E1", "user@example.com", &target)
	require.NoError(t, err)
	assert.True(t, result.Tracked)
	assert.False(t, result.Reactivated)

	interest, err := repositories.NewUserInterestRepository().FindByEventAndEmail(session, "E1", "user@example.com")
	require.NoError(t, err)
	require.NotNil(t, interest.TargetPrice)
	assert.Equal(t, 45.0, *interest.TargetPrice)
}
