package ticketmaster

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"example.com/tickettracker/config"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultSearchSize is the number of results requested when a search does not
// ask for a specific page size. The provider caps size at 200.
const DefaultSearchSize = 20

// SearchFilters is the enumerated optional parameter set for event searches.
// Zero-valued fields are not sent.
type SearchFilters struct {
	Keyword            string
	City               string
	StateCode          string
	ClassificationName string
	StartDateTime      string // YYYY-MM-DDTHH:mm:ssZ
	Size               int
}

// Client calls the Ticketmaster Discovery API
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a Discovery API client
func NewClient(cfg config.TicketmasterConfig) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(30 * time.Second).
		SetQueryParam("apikey", cfg.APIKey).
		SetHeader("Accept", "application/json")

	return &Client{httpClient: httpClient}
}

// searchResponse is the envelope the provider wraps search results in
type searchResponse struct {
	Embedded *struct {
		Events []RawEvent `json:"events"`
	} `json:"_embedded"`
}

// SearchEvents searches for events matching the given filters. A response
// with no matches is an empty slice, not an error.
func (c *Client) SearchEvents(ctx context.Context, filters SearchFilters) ([]RawEvent, error) {
	size := filters.Size
	if size <= 0 {
		size = DefaultSearchSize
	}

	params := map[string]string{"size": strconv.Itoa(size)}
	if filters.Keyword != "" {
		params["keyword"] = filters.Keyword
	}
	if filters.City != "" {
		params["city"] = filters.City
	}
	if filters.StateCode != "" {
		params["stateCode"] = filters.StateCode
	}
	if filters.ClassificationName != "" {
		params["classificationName"] = filters.ClassificationName
	}
	if filters.StartDateTime != "" {
		params["startDateTime"] = filters.StartDateTime
	}

	var result searchResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&result).
		Get("/events.json")
	if err != nil {
		return nil, errors.Wrap(err, "failed to call Ticketmaster API")
	}
	if resp.IsError() {
		return nil, errors.Errorf("Ticketmaster API returned %s", resp.Status())
	}

	if result.Embedded == nil {
		return []RawEvent{}, nil
	}

	log.Debug().Int("count", len(result.Embedded.Events)).Msg("Fetched events from Ticketmaster")
	return result.Embedded.Events, nil
}

// GetEventDetails fetches one event by its identifier. A "not found" answer
// from the provider is reported as (nil, nil); any other failure is an error.
func (c *Client) GetEventDetails(ctx context.Context, eventID string) (*RawEvent, error) {
	var event RawEvent
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&event).
		Get(fmt.Sprintf("/events/%s.json", eventID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to call Ticketmaster API")
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, errors.Errorf("Ticketmaster API returned %s", resp.Status())
	}

	return &event, nil
}
