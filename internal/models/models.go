package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Event holds the descriptive data for a ticketed event. The primary key is
// the provider-assigned identifier, and descriptive fields are written once
// on first observation; subsequent observations only accumulate price
// snapshots.
type Event struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Name      string     `gorm:"not null" json:"name"`
	EventType *string    `json:"event_type"`
	StartDate *time.Time `json:"start_date"`
	VenueName *string    `json:"venue_name"`
	City      *string    `json:"city"`
	State     *string    `json:"state"`
	URL       *string    `json:"url"`

	PriceSnapshots []PriceSnapshot `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
}

// PriceSnapshot is one observation of an event's price range at a point in
// time. Rows are append-only; the unique index on (event_id, snapshot_time)
// rejects duplicate observations for the same instant.
type PriceSnapshot struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID      string    `gorm:"not null;uniqueIndex:uix_event_snapshot" json:"event_id"`
	MinPrice     *float64  `json:"min_price"`
	MaxPrice     *float64  `json:"max_price"`
	Currency     string    `gorm:"default:USD" json:"currency"`
	SnapshotTime time.Time `gorm:"not null;uniqueIndex:uix_event_snapshot" json:"snapshot_time"`
}

// UserInterest is a user's subscription to price tracking for one event.
// (event_id, user_email) is the natural key; it is not enforced unique at the
// storage level, the workflow looks the pair up before creating a row.
type UserInterest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	EventID     string    `gorm:"not null;index" json:"event_id"`
	UserEmail   string    `gorm:"not null" json:"user_email"`
	TargetPrice *float64  `json:"target_price"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
}

// SetupModels configures GORM models and runs migrations. Migration is
// idempotent: tables that already exist are left alone.
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Event{},
		&PriceSnapshot{},
		&UserInterest{},
	)

	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
