// Package ics fetches external ICS calendar feeds and normalizes their
// events, including recurrence expansion, for the week aggregator.
package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/campus-planner/internal/aggregator"
)

// ErrFeedUnavailable indicates a feed could not be fetched or parsed.
var ErrFeedUnavailable = errors.New("ics: feed unavailable")

const fetchTimeout = 15 * time.Second

// Source is one ICS subscription feed.
type Source struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Client fetches the configured feeds and implements the aggregator's
// external calendar source.
type Client struct {
	httpClient *http.Client
	sources    []Source
	logger     *slog.Logger
}

// NewClient creates a client over the given feeds. A nil logger discards
// output.
func NewClient(sources []Source, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		httpClient: &http.Client{Timeout: fetchTimeout},
		sources:    sources,
		logger:     logger,
	}
}

// FetchEvents downloads every feed, expands recurrences, and returns the
// occurrences falling in [from, to) as normalized week events. A failing feed
// is logged and skipped; only context cancellation aborts the whole fetch.
func (c *Client) FetchEvents(ctx context.Context, userID string, from, to time.Time) ([]aggregator.WeekEvent, error) {
	var events []aggregator.WeekEvent

	for _, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		body, err := c.fetchFeed(ctx, src)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			c.logger.Warn("external calendar feed failed",
				slog.String("feed", src.Name),
				slog.String("error", err.Error()))
			continue
		}

		parsed, err := parseCalendar(body)
		if err != nil {
			c.logger.Warn("external calendar feed unparsable",
				slog.String("feed", src.Name),
				slog.String("error", err.Error()))
			continue
		}

		for _, occ := range expandEvents(parsed, from, to) {
			events = append(events, aggregator.WeekEvent{
				ID:     fmt.Sprintf("%s/%s/%s", src.Name, occ.UID, occ.Start.UTC().Format(time.RFC3339)),
				Title:  occ.Summary,
				Start:  occ.Start,
				End:    occ.End,
				Type:   aggregator.EventExternal,
				Status: aggregator.StatusActive,
			})
		}
	}

	return events, nil
}

func (c *Client) fetchFeed(ctx context.Context, src Source) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrFeedUnavailable, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeedUnavailable, err)
	}
	return body, nil
}
