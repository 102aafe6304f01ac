package db

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Massamba505/Events-Api/util"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Draft of a valid event two hours from now, today
func testEventDraft() *Event {
	start := time.Now().Add(2 * time.Hour)
	end := start.Add(2 * time.Hour)

	return &Event{
		UserID:      primitive.NewObjectID(),
		Title:       "Test Event " + util.RandomString(6),
		Description: "An event created by the integration tests",
		Location:    "Main Campus",
		Date:        fmt.Sprintf("%02d/%02d/%04d", start.Day(), int(start.Month()), start.Year()),
		StartTime:   fmt.Sprintf("%02d:%02d", start.Hour(), start.Minute()),
		EndTime:     fmt.Sprintf("%02d:%02d", end.Hour(), end.Minute()),
	}
}

func createTestEvent(t *testing.T, mutate func(*Event)) *Event {
	t.Helper()

	draft := testEventDraft()
	if mutate != nil {
		mutate(draft)
	}

	event, err := queries.CreateEvent(context.Background(), draft)
	require.NoError(t, err)
	return event
}

func TestCreateEvent(t *testing.T) {
	event := createTestEvent(t, nil)

	require.GreaterOrEqual(t, event.EventID, int64(1000))
	require.Equal(t, EventPending, event.Status)
	require.False(t, event.IsCancelled)
	require.Zero(t, event.CurrentAttendees)
	require.Empty(t, event.CurrentAttendeeList)
}

// Free events store a zero price whatever was submitted
func TestCreateEventFreeIgnoresPrice(t *testing.T) {
	event := createTestEvent(t, func(draft *Event) {
		draft.IsPaid = false
		draft.TicketPrice = 250
		draft.Discount = 50
	})

	require.Zero(t, event.TicketPrice)
	require.Zero(t, event.Discount)
}

func TestCreateEventAppliesDiscount(t *testing.T) {
	event := createTestEvent(t, func(draft *Event) {
		draft.IsPaid = true
		draft.TicketPrice = 100
		draft.Discount = 20
	})

	require.Equal(t, 80.00, event.TicketPrice)
}

func TestCreateEventValidation(t *testing.T) {
	drafts := []func(*Event){
		func(draft *Event) { draft.Title = "  " },
		func(draft *Event) { draft.Date = "2026-12-25" },
		func(draft *Event) { draft.StartTime = "25:00" },
		func(draft *Event) { draft.Discount = 120 },
		func(draft *Event) { bad := int64(-1); draft.MaxAttendees = &bad },
		func(draft *Event) { draft.IsPaid = true; draft.TicketPrice = 0 },
	}

	for _, mutate := range drafts {
		draft := testEventDraft()
		mutate(draft)
		_, err := queries.CreateEvent(context.Background(), draft)
		require.True(t, IsValidation(err), "expected validation error, got %v", err)
	}
}

// 50 concurrent creations must yield 50 distinct sequential event IDs
func TestNextEventIDConcurrent(t *testing.T) {
	const n = 50

	var wg sync.WaitGroup
	ids := make(chan int64, n)

	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := queries.NextEventID(context.Background())
			if err != nil {
				t.Errorf("failed to allocate event ID: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		require.GreaterOrEqual(t, id, int64(1000))
		require.False(t, seen[id], "event ID %d allocated twice", id)
		seen[id] = true
	}
	require.Len(t, seen, n)
}

func TestFindEventDualResolution(t *testing.T) {
	event := createTestEvent(t, nil)

	// Human-facing sequential ID
	byEventID, err := queries.FindEvent(context.Background(), fmt.Sprintf("%d", event.EventID))
	require.NoError(t, err)
	require.Equal(t, event.ID, byEventID.ID)

	// Internal ObjectID hex
	byHex, err := queries.FindEvent(context.Background(), event.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, event.ID, byHex.ID)

	_, err = queries.FindEvent(context.Background(), "999999999")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = queries.FindEvent(context.Background(), "not-an-id")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateEventRecomputesPrice(t *testing.T) {
	event := createTestEvent(t, func(draft *Event) {
		draft.IsPaid = true
		draft.TicketPrice = 50
	})

	updated, err := queries.UpdateEvent(context.Background(), event.ID.Hex(), EventUpdate{
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		Date:        event.Date,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		IsPaid:      true,
		TicketPrice: 100,
		Discount:    20,
	})
	require.NoError(t, err)
	require.Equal(t, 80.00, updated.TicketPrice)
}

func TestCancelEventIdempotent(t *testing.T) {
	event := createTestEvent(t, nil)

	first, err := queries.CancelEvent(context.Background(), event.ID.Hex())
	require.NoError(t, err)
	require.True(t, first.IsCancelled)

	// Second cancel succeeds without error
	second, err := queries.CancelEvent(context.Background(), event.ID.Hex())
	require.NoError(t, err)
	require.True(t, second.IsCancelled)
}

func TestRegisterAttendeeDuplicate(t *testing.T) {
	event := createTestEvent(t, nil)
	user := primitive.NewObjectID()

	require.NoError(t, queries.RegisterAttendee(context.Background(), event.ID, user))

	err := queries.RegisterAttendee(context.Background(), event.ID, user)
	require.ErrorIs(t, err, ErrDuplicateRegistration)

	// Exactly one attendance
	stored, err := queries.GetEventByID(context.Background(), event.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), stored.CurrentAttendees)
	require.Len(t, stored.CurrentAttendeeList, 1)
}

// With capacity N, N registrations out of a concurrent burst succeed and the
// attendee count never exceeds N
func TestRegisterAttendeeCapacityConcurrent(t *testing.T) {
	const capacity = 5
	const attempts = 20

	event := createTestEvent(t, func(draft *Event) {
		max := int64(capacity)
		draft.MaxAttendees = &max
	})

	var wg sync.WaitGroup
	var succeeded, full atomic.Int64

	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := queries.RegisterAttendee(context.Background(), event.ID, primitive.NewObjectID())
			switch {
			case err == nil:
				succeeded.Add(1)
			case err == ErrCapacityExceeded:
				full.Add(1)
			default:
				t.Errorf("unexpected registration error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(capacity), succeeded.Load())
	require.Equal(t, int64(attempts-capacity), full.Load())

	stored, err := queries.GetEventByID(context.Background(), event.ID)
	require.NoError(t, err)
	require.Equal(t, int64(capacity), stored.CurrentAttendees)
	require.Len(t, stored.CurrentAttendeeList, capacity)
}

func TestRegisterAttendeeUnlimited(t *testing.T) {
	event := createTestEvent(t, nil) // MaxAttendees nil

	for range 10 {
		require.NoError(t, queries.RegisterAttendee(context.Background(), event.ID, primitive.NewObjectID()))
	}

	stored, err := queries.GetEventByID(context.Background(), event.ID)
	require.NoError(t, err)
	require.Equal(t, int64(10), stored.CurrentAttendees)
}

func TestSearchEventsByCategoryName(t *testing.T) {
	ctx := context.Background()

	category := Category{ID: primitive.NewObjectID(), Name: "Astronomy" + util.RandomString(4)}
	_, err := queries.DB.Collection("categories").InsertOne(ctx, category)
	require.NoError(t, err)

	matching := createTestEvent(t, func(draft *Event) {
		draft.Category = []primitive.ObjectID{category.ID}
	})
	cancelled := createTestEvent(t, func(draft *Event) {
		draft.Category = []primitive.ObjectID{category.ID}
	})

	// Only approved, non-cancelled events are searchable
	_, err = queries.SetApprovalStatus(ctx, matching.ID.Hex(), EventApproved)
	require.NoError(t, err)
	_, err = queries.SetApprovalStatus(ctx, cancelled.ID.Hex(), EventApproved)
	require.NoError(t, err)
	_, err = queries.CancelEvent(ctx, cancelled.ID.Hex())
	require.NoError(t, err)

	// Query matches the category name only, not title or description
	results, err := queries.SearchEvents(ctx, category.Name)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, matching.ID, results[0].ID)
}
