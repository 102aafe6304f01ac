// Package catalog serves the event listing surface: it composes repository
// reads with temporal classification and preference ranking.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/service/rank"
	"github.com/Massamba505/Events-Api/service/schedule"
	"github.com/Massamba505/Events-Api/util"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	popularLimit    = 8
	recommendLimit  = 4
	popularCacheKey = "events:popular"
	popularCacheTTL = time.Minute
)

// Catalog answers every read-only event query.
type Catalog struct {
	queries *db.Queries
}

func New(queries *db.Queries) *Catalog {
	return &Catalog{queries: queries}
}

// ListAll returns approved, non-cancelled events newest-first. When a viewer
// is supplied their preferred categories bubble to the front.
func (catalog *Catalog) ListAll(ctx context.Context, viewer *primitive.ObjectID) ([]db.Event, error) {
	events, err := catalog.queries.ListApprovedEvents(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.rankForViewer(ctx, events, viewer), nil
}

// ListBucket filters the candidate set through the temporal classifier. An
// event with malformed date/time strings is skipped, never a request
// failure.
func (catalog *Catalog) ListBucket(ctx context.Context, bucket schedule.Bucket, viewer *primitive.ObjectID) ([]db.Event, error) {
	events, err := catalog.ListAll(ctx, viewer)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	filtered := make([]db.Event, 0, len(events))
	for _, event := range events {
		match, err := schedule.Matches(bucket, event.Date, event.StartTime, event.EndTime, now)
		if err != nil {
			if errors.Is(err, schedule.ErrMalformedTime) {
				util.LOGGER.Warn("Skipping event with malformed schedule", "event_id", event.EventID, "error", err)
				continue
			}
			return nil, err
		}
		if match {
			filtered = append(filtered, event)
		}
	}
	return filtered, nil
}

// Sort orders the approved events by an explicit criterion. The explicit
// sort takes precedence: no preference ranking is applied here.
func (catalog *Catalog) Sort(ctx context.Context, criteria, order string) ([]db.Event, error) {
	events, err := catalog.queries.ListApprovedEvents(ctx)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(criteria) {
	case "title":
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].Title) < strings.ToLower(events[j].Title)
		})
	case "ticketprice":
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].TicketPrice < events[j].TicketPrice
		})
	case "date", "":
		fallthrough
	default:
		sort.SliceStable(events, func(i, j int) bool {
			return startOrZero(events[i]).Before(startOrZero(events[j]))
		})
	}

	if strings.EqualFold(order, "desc") {
		for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
			events[i], events[j] = events[j], events[i]
		}
	}
	return events, nil
}

// Search matches query case-insensitively against title, description and
// category names. No match is an empty result, not an error.
func (catalog *Catalog) Search(ctx context.Context, query string) ([]db.Event, error) {
	return catalog.queries.SearchEvents(ctx, query)
}

// Details resolves one event by human-facing event_id or internal id.
func (catalog *Catalog) Details(ctx context.Context, identifier string) (*db.Event, error) {
	return catalog.queries.FindEvent(ctx, identifier)
}

// Popular returns the top events by attendance, served from a short-lived
// cache when available.
func (catalog *Catalog) Popular(ctx context.Context) ([]db.Event, error) {
	if cached, err := catalog.queries.GetCache(ctx, popularCacheKey); err == nil {
		var events []db.Event
		if err := json.Unmarshal([]byte(cached), &events); err == nil {
			return events, nil
		}
	}

	events, err := catalog.queries.PopularEvents(ctx, popularLimit)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(events); err == nil {
		catalog.queries.SetCache(ctx, popularCacheKey, string(encoded), popularCacheTTL)
	}
	return events, nil
}

// Recommended returns up to four events matching the viewer's preferred
// categories, soonest-first. Callers guarantee the viewer is authenticated.
func (catalog *Catalog) Recommended(ctx context.Context, viewer primitive.ObjectID) ([]db.Event, error) {
	preferred, err := catalog.queries.GetUserPreference(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if len(preferred) == 0 {
		return []db.Event{}, nil
	}

	events, err := catalog.queries.EventsByCategories(ctx, preferred)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(events, func(i, j int) bool {
		return startOrZero(events[i]).Before(startOrZero(events[j]))
	})

	if len(events) > recommendLimit {
		events = events[:recommendLimit]
	}
	return events, nil
}

// InvalidatePopular drops the cached popular listing after an event mutation.
func (catalog *Catalog) InvalidatePopular(ctx context.Context) {
	catalog.queries.DropCache(ctx, popularCacheKey)
}

func (catalog *Catalog) rankForViewer(ctx context.Context, events []db.Event, viewer *primitive.ObjectID) []db.Event {
	if viewer == nil {
		return events
	}

	preferred, err := catalog.queries.GetUserPreference(ctx, *viewer)
	if err != nil {
		util.LOGGER.Warn("Failed to load viewer preference, serving unranked", "viewer", viewer.Hex(), "error", err)
		return events
	}
	return rank.ByPreference(events, preferred)
}

// startOrZero parses the event's start; malformed schedules sort first
// instead of failing the listing.
func startOrZero(event db.Event) time.Time {
	start, err := schedule.ParseEventTime(event.Date, event.StartTime)
	if err != nil {
		return time.Time{}
	}
	return start
}
