package ticketmaster

import (
	"fmt"
	"time"
)

// RawEvent mirrors the slice of the provider's event payload this system
// cares about.
type RawEvent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	PriceRanges []struct {
		Min      *float64 `json:"min"`
		Max      *float64 `json:"max"`
		Currency string   `json:"currency"`
	} `json:"priceRanges"`
	Dates struct {
		Start struct {
			DateTime string `json:"dateTime"`
		} `json:"start"`
	} `json:"dates"`
	Classifications []struct {
		Segment struct {
			Name string `json:"name"`
		} `json:"segment"`
		Genre struct {
			Name string `json:"name"`
		} `json:"genre"`
	} `json:"classifications"`
	Embedded struct {
		Venues []struct {
			Name string `json:"name"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
			State struct {
				StateCode string `json:"stateCode"`
			} `json:"state"`
		} `json:"venues"`
	} `json:"_embedded"`
}

// ParsedEvent is the flat, normalized record the rest of the system works
// with. Optional fields are nil when the provider payload omits them.
type ParsedEvent struct {
	ID        string
	Name      string
	EventType *string
	StartDate *time.Time
	VenueName *string
	City      *string
	State     *string
	URL       *string
	MinPrice  *float64
	MaxPrice  *float64
	Currency  string
}

// MissingFieldError reports a raw record lacking a field the data model
// requires.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("event payload missing required field %q", e.Field)
}

// ParseEvent normalizes a raw provider payload. It degrades gracefully on
// missing nested fields and only fails when the identifier or name is absent.
func ParseEvent(event RawEvent) (*ParsedEvent, error) {
	if event.ID == "" {
		return nil, &MissingFieldError{Field: "id"}
	}
	if event.Name == "" {
		return nil, &MissingFieldError{Field: "name"}
	}

	parsed := &ParsedEvent{
		ID:       event.ID,
		Name:     event.Name,
		Currency: "USD",
	}

	if event.URL != "" {
		url := event.URL
		parsed.URL = &url
	}

	// First price range wins; currency falls back to USD when the range is
	// present but the currency is not.
	if len(event.PriceRanges) > 0 {
		pr := event.PriceRanges[0]
		parsed.MinPrice = pr.Min
		parsed.MaxPrice = pr.Max
		if pr.Currency != "" {
			parsed.Currency = pr.Currency
		}
	}

	// First venue wins
	if len(event.Embedded.Venues) > 0 {
		venue := event.Embedded.Venues[0]
		if venue.Name != "" {
			name := venue.Name
			parsed.VenueName = &name
		}
		if venue.City.Name != "" {
			city := venue.City.Name
			parsed.City = &city
		}
		if venue.State.StateCode != "" {
			state := venue.State.StateCode
			parsed.State = &state
		}
	}

	// An unparseable start time yields no start time, not an error
	if raw := event.Dates.Start.DateTime; raw != "" {
		if start, err := time.Parse(time.RFC3339, raw); err == nil {
			startUTC := start.UTC()
			parsed.StartDate = &startUTC
		}
	}

	if len(event.Classifications) > 0 {
		segment := event.Classifications[0].Segment.Name
		genre := event.Classifications[0].Genre.Name
		var eventType string
		switch {
		case segment != "" && genre != "":
			eventType = segment + "/" + genre
		case segment != "":
			eventType = segment
		case genre != "":
			eventType = genre
		}
		if eventType != "" {
			parsed.EventType = &eventType
		}
	}

	return parsed, nil
}
