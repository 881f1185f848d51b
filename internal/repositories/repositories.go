package repositories

import (
	"time"

	"example.com/tickettracker/internal/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Repositories are stateless: every method takes the session it should run
// against, so the same code works inside and outside a transactional scope.

// EventRepository provides access to event data
type EventRepository struct{}

// NewEventRepository creates a new event repository
func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

// FindByID gets an event by its provider-assigned identifier. A missing row
// is reported as (nil, nil), not as an error.
func (r *EventRepository) FindByID(tx *gorm.DB, id string) (*models.Event, error) {
	var event models.Event
	err := tx.Where("id = ?", id).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get event by ID")
	}
	return &event, nil
}

// Create inserts a new event
func (r *EventRepository) Create(tx *gorm.DB, event *models.Event) error {
	if err := tx.Create(event).Error; err != nil {
		return errors.Wrap(err, "failed to create event")
	}
	return nil
}

// All lists every stored event
func (r *EventRepository) All(tx *gorm.DB) ([]models.Event, error) {
	var events []models.Event
	if err := tx.Find(&events).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}
	return events, nil
}

// Count returns the number of stored events
func (r *EventRepository) Count(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Model(&models.Event{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count events")
	}
	return count, nil
}

// PriceSnapshotRepository provides access to price snapshot data
type PriceSnapshotRepository struct{}

// NewPriceSnapshotRepository creates a new price snapshot repository
func NewPriceSnapshotRepository() *PriceSnapshotRepository {
	return &PriceSnapshotRepository{}
}

// Create inserts a new price snapshot. Missing IDs and snapshot times are
// filled in here so callers can pass price fields verbatim.
func (r *PriceSnapshotRepository) Create(tx *gorm.DB, snapshot *models.PriceSnapshot) error {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}
	if snapshot.SnapshotTime.IsZero() {
		snapshot.SnapshotTime = time.Now().UTC()
	}
	if snapshot.Currency == "" {
		snapshot.Currency = "USD"
	}
	if err := tx.Create(snapshot).Error; err != nil {
		return errors.Wrap(err, "failed to create price snapshot")
	}
	return nil
}

// ListByEvent lists an event's snapshots ordered by observation time
func (r *PriceSnapshotRepository) ListByEvent(tx *gorm.DB, eventID string) ([]models.PriceSnapshot, error) {
	var snapshots []models.PriceSnapshot
	err := tx.Where("event_id = ?", eventID).
		Order("snapshot_time").
		Find(&snapshots).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list price snapshots")
	}
	return snapshots, nil
}

// Count returns the number of stored price snapshots
func (r *PriceSnapshotRepository) Count(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Model(&models.PriceSnapshot{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count price snapshots")
	}
	return count, nil
}

// UserInterestRepository provides access to tracking subscriptions
type UserInterestRepository struct{}

// NewUserInterestRepository creates a new user interest repository
func NewUserInterestRepository() *UserInterestRepository {
	return &UserInterestRepository{}
}

// FindByEventAndEmail looks up the tracking entry for an (event, email) pair.
// A missing row is reported as (nil, nil).
func (r *UserInterestRepository) FindByEventAndEmail(tx *gorm.DB, eventID, email string) (*models.UserInterest, error) {
	var interest models.UserInterest
	err := tx.Where("event_id = ? AND user_email = ?", eventID, email).First(&interest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user interest")
	}
	return &interest, nil
}

// ListActive lists all tracking entries whose active flag is set
func (r *UserInterestRepository) ListActive(tx *gorm.DB) ([]models.UserInterest, error) {
	var interests []models.UserInterest
	if err := tx.Where("is_active = ?", true).Find(&interests).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list active user interests")
	}
	return interests, nil
}

// All lists every tracking entry
func (r *UserInterestRepository) All(tx *gorm.DB) ([]models.UserInterest, error) {
	var interests []models.UserInterest
	if err := tx.Find(&interests).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list user interests")
	}
	return interests, nil
}

// Create inserts a new tracking entry
func (r *UserInterestRepository) Create(tx *gorm.DB, interest *models.UserInterest) error {
	if interest.ID == uuid.Nil {
		interest.ID = uuid.New()
	}
	if err := tx.Create(interest).Error; err != nil {
		return errors.Wrap(err, "failed to create user interest")
	}
	return nil
}

// Save persists changes to an existing tracking entry
func (r *UserInterestRepository) Save(tx *gorm.DB, interest *models.UserInterest) error {
	if err := tx.Save(interest).Error; err != nil {
		return errors.Wrap(err, "failed to save user interest")
	}
	return nil
}

// Count returns the number of tracking entries
func (r *UserInterestRepository) Count(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Model(&models.UserInterest{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count user interests")
	}
	return count, nil
}
