package collector

import (
	"context"
	"time"

	"example.com/tickettracker/internal/database"
	"example.com/tickettracker/internal/models"
	"example.com/tickettracker/internal/repositories"
	"example.com/tickettracker/internal/ticketmaster"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// EventSource is the remote API surface the collector depends on
type EventSource interface {
	SearchEvents(ctx context.Context, filters ticketmaster.SearchFilters) ([]ticketmaster.RawEvent, error)
	GetEventDetails(ctx context.Context, eventID string) (*ticketmaster.RawEvent, error)
}

// Outcome classifies what storing one record did
type Outcome string

const (
	// OutcomeCreated means the record's event was seen for the first time
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated means the event was already known and only gained a snapshot
	OutcomeUpdated Outcome = "updated"
)

// CollectError records one record's failure inside a batch
type CollectError struct {
	EventID   string
	EventName string
	Message   string
}

// Result aggregates the outcome counts of one collection run
type Result struct {
	Fetched int
	Created int
	Updated int
	Skipped int
	Errors  []CollectError
}

// Collector reconciles fetched event records against the store: new events
// are inserted, known events gain a price snapshot, and batch runs isolate
// per-record failures.
type Collector struct {
	source       EventSource
	db           *database.Database
	eventRepo    *repositories.EventRepository
	snapshotRepo *repositories.PriceSnapshotRepository
	interestRepo *repositories.UserInterestRepository
}

// New creates a collector
func New(source EventSource, db *database.Database) *Collector {
	return &Collector{
		source:       source,
		db:           db,
		eventRepo:    repositories.NewEventRepository(),
		snapshotRepo: repositories.NewPriceSnapshotRepository(),
		interestRepo: repositories.NewUserInterestRepository(),
	}
}

// StoreEvent stores one normalized record in a single transactional scope.
// The event's descriptive fields are written once, on first observation; a
// price snapshot is appended on every observation, nulls included.
func (c *Collector) StoreEvent(ctx context.Context, parsed *ticketmaster.ParsedEvent) (Outcome, error) {
	outcome := OutcomeUpdated

	err := c.db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)

		event, err := c.eventRepo.FindByID(tx, parsed.ID)
		if err != nil {
			return err
		}

		if event == nil {
			outcome = OutcomeCreated
			event = &models.Event{
				ID:        parsed.ID,
				Name:      parsed.Name,
				EventType: parsed.EventType,
				StartDate: parsed.StartDate,
				VenueName: parsed.VenueName,
				City:      parsed.City,
				State:     parsed.State,
				URL:       parsed.URL,
			}
			if err := c.eventRepo.Create(tx, event); err != nil {
				return err
			}
		}

		snapshot := &models.PriceSnapshot{
			EventID:  parsed.ID,
			MinPrice: parsed.MinPrice,
			MaxPrice: parsed.MaxPrice,
			Currency: parsed.Currency,
		}
		return c.snapshotRepo.Create(tx, snapshot)
	})
	if err != nil {
		return "", err
	}

	return outcome, nil
}

// CollectEvents fetches events matching the filters and stores each one.
// Every record runs in its own transaction, so one failure neither aborts the
// batch nor rolls back sibling records' work.
func (c *Collector) CollectEvents(ctx context.Context, filters ticketmaster.SearchFilters) (*Result, error) {
	raw, err := c.source.SearchEvents(ctx, filters)
	if err != nil {
		return nil, err
	}

	result := &Result{Fetched: len(raw)}

	for _, event := range raw {
		parsed, err := ticketmaster.ParseEvent(event)
		if err != nil {
			result.Errors = append(result.Errors, newCollectError(event.ID, event.Name, err))
			continue
		}

		outcome, err := c.StoreEvent(ctx, parsed)
		if err != nil {
			result.Errors = append(result.Errors, newCollectError(parsed.ID, parsed.Name, err))
			continue
		}

		switch outcome {
		case OutcomeCreated:
			result.Created++
		case OutcomeUpdated:
			result.Updated++
		}
	}

	log.Info().
		Int("fetched", result.Fetched).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("errors", len(result.Errors)).
		Msg("Collection run finished")

	return result, nil
}

// CollectTracked refreshes price history for actively tracked events only.
// Interests whose event has already started are deactivated and skipped. The
// deactivation pass runs in one transaction; the per-event API calls run
// outside it so network latency never holds a transaction open.
func (c *Collector) CollectTracked(ctx context.Context) (*Result, error) {
	result := &Result{}

	var workList []string
	err := c.db.Transaction(func(tx *gorm.DB) error {
		tx = tx.WithContext(ctx)

		interests, err := c.interestRepo.ListActive(tx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		seen := make(map[string]bool)
		for i := range interests {
			interest := &interests[i]

			event, err := c.eventRepo.FindByID(tx, interest.EventID)
			if err != nil {
				return err
			}

			// Past events are no longer worth refreshing
			if event != nil && event.StartDate != nil && event.StartDate.Before(now) {
				interest.IsActive = false
				if err := c.interestRepo.Save(tx, interest); err != nil {
					return err
				}
				result.Skipped++
				log.Info().
					Str("event_id", interest.EventID).
					Str("email", interest.UserEmail).
					Msg("Deactivated tracking for past event")
				continue
			}

			if !seen[interest.EventID] {
				seen[interest.EventID] = true
				workList = append(workList, interest.EventID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Fetched = len(workList)

	for _, eventID := range workList {
		raw, err := c.source.GetEventDetails(ctx, eventID)
		if err != nil {
			result.Errors = append(result.Errors, newCollectError(eventID, "", err))
			continue
		}
		if raw == nil {
			result.Errors = append(result.Errors, CollectError{
				EventID:   eventID,
				EventName: "Unknown",
				Message:   "Not found in API",
			})
			continue
		}

		parsed, err := ticketmaster.ParseEvent(*raw)
		if err != nil {
			result.Errors = append(result.Errors, newCollectError(eventID, raw.Name, err))
			continue
		}

		if _, err := c.StoreEvent(ctx, parsed); err != nil {
			result.Errors = append(result.Errors, newCollectError(parsed.ID, parsed.Name, err))
			continue
		}

		// Tracked mode only ever refreshes already-known events
		result.Updated++
	}

	log.Info().
		Int("fetched", result.Fetched).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("Tracked collection run finished")

	return result, nil
}

func newCollectError(id, name string, err error) CollectError {
	if id == "" {
		id = "unknown"
	}
	if name == "" {
		name = "Unknown"
	}
	return CollectError{EventID: id, EventName: name, Message: err.Error()}
}
