package tracker

import (
	"context"

	"example.com/tickettracker/internal/collector"
	"example.com/tickettracker/internal/database"
	"example.com/tickettracker/internal/models"
	"example.com/tickettracker/internal/repositories"
	"example.com/tickettracker/internal/ticketmaster"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Result reports what tracking an event did
type Result struct {
	// Tracked is false only when the event could not be resolved upstream
	Tracked bool
	// Reactivated is true when a dormant tracking entry was revived
	Reactivated bool
	Event       *models.Event
}

// Tracker implements the tracking workflow: resolve the event (locally or by
// fetching and storing it), then create or reactivate the user's tracking
// entry.
type Tracker struct {
	source       collector.EventSource
	db           *database.Database
	collector    *collector.Collector
	eventRepo    *repositories.EventRepository
	interestRepo *repositories.UserInterestRepository
}

// New creates a tracker
func New(source collector.EventSource, db *database.Database, c *collector.Collector) *Tracker {
	return &Tracker{
		source:       source,
		db:           db,
		collector:    c,
		eventRepo:    repositories.NewEventRepository(),
		interestRepo: repositories.NewUserInterestRepository(),
	}
}

// Track subscribes a user to price tracking for one event. The returned
// Result has Tracked=false, with no tracking entry written, only when the
// provider has no such event.
func (t *Tracker) Track(ctx context.Context, eventID, userEmail string, targetPrice *float64) (*Result, error) {
	session := t.db.DB().WithContext(ctx)

	event, err := t.eventRepo.FindByID(session, eventID)
	if err != nil {
		return nil, err
	}

	if event == nil {
		log.Info().Str("event_id", eventID).Msg("Event not in database, fetching from API")

		raw, err := t.source.GetEventDetails(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return &Result{Tracked: false}, nil
		}

		parsed, err := ticketmaster.ParseEvent(*raw)
		if err != nil {
			return nil, err
		}
		if _, err := t.collector.StoreEvent(ctx, parsed); err != nil {
			return nil, err
		}

		event, err = t.eventRepo.FindByID(session, eventID)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{Tracked: true, Event: event}

	err = t.db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)

		interest, err := t.interestRepo.FindByEventAndEmail(tx, eventID, userEmail)
		if err != nil {
			return err
		}

		if interest != nil {
			result.Reactivated = !interest.IsActive
			interest.IsActive = true
			interest.TargetPrice = targetPrice
			return t.interestRepo.Save(tx, interest)
		}

		return t.interestRepo.Create(tx, &models.UserInterest{
			EventID:     eventID,
			UserEmail:   userEmail,
			TargetPrice: targetPrice,
			IsActive:    true,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("event_id", eventID).
		Str("email", userEmail).
		Bool("reactivated", result.Reactivated).
		Msg("Tracking entry saved")

	return result, nil
}
