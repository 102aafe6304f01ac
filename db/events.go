package db

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Massamba505/Events-Api/service/schedule"
	"github.com/Massamba505/Events-Api/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Human-facing event ids start here when the collection is empty.
const eventIDBase = 999

// counterDoc backs the atomic event_id sequence.
type counterDoc struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// NextEventID allocates the next human-facing event id with a single atomic
// $inc on the counter document. Two concurrent creates can never receive the
// same id.
func (queries *Queries) NextEventID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter counterDoc
	err := queries.DB.Collection("counters").FindOneAndUpdate(
		ctx,
		bson.M{"_id": "event_id"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}

	return eventIDBase + counter.Seq, nil
}

// SeedEventCounter advances the counter to cover any event ids already in the
// collection, so allocation continues from the existing max. $max keeps this
// safe to run concurrently with allocation.
func (queries *Queries) SeedEventCounter(ctx context.Context) error {
	opts := options.FindOne().SetSort(bson.D{{Key: "event_id", Value: -1}})

	var last Event
	err := queries.DB.Collection("events").FindOne(ctx, bson.M{}, opts).Decode(&last)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return err
	}

	_, err = queries.DB.Collection("counters").UpdateOne(
		ctx,
		bson.M{"_id": "event_id"},
		bson.M{"$max": bson.M{"seq": last.EventID - eventIDBase}},
		options.Update().SetUpsert(true),
	)
	return err
}

// validateEvent enforces the required-field and price rules shared by create
// and update.
func validateEvent(event *Event) error {
	if strings.TrimSpace(event.Title) == "" ||
		strings.TrimSpace(event.Description) == "" ||
		strings.TrimSpace(event.Location) == "" ||
		strings.TrimSpace(event.Date) == "" ||
		strings.TrimSpace(event.StartTime) == "" ||
		strings.TrimSpace(event.EndTime) == "" {
		return NewValidationError("Please fill in all required fields")
	}

	if _, err := schedule.ParseEventTime(event.Date, event.StartTime); err != nil {
		return NewValidationError("Invalid date or start time format")
	}
	if _, err := schedule.ParseEventTime(event.Date, event.EndTime); err != nil {
		return NewValidationError("Invalid date or end time format")
	}

	if event.Discount < 0 || event.Discount > 100 {
		return NewValidationError("Discount must be between 0 and 100")
	}

	if event.MaxAttendees != nil && *event.MaxAttendees <= 0 {
		return NewValidationError("Maximum attendees must be a positive number")
	}

	if event.IsPaid {
		if event.TicketPrice <= 0 {
			return NewValidationError("Please provide a valid ticket price greater than zero for paid events")
		}
	} else {
		// Free events always store a zero price, whatever was submitted
		event.TicketPrice = 0
		event.Discount = 0
	}

	return nil
}

// CreateEvent validates the draft, allocates its event_id and persists it
// with status pending. The caller owns image upload; draft.Images already
// holds public URLs.
func (queries *Queries) CreateEvent(ctx context.Context, draft *Event) (*Event, error) {
	if err := validateEvent(draft); err != nil {
		return nil, err
	}

	eventID, err := queries.NextEventID(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	draft.ID = primitive.NewObjectID()
	draft.EventID = eventID
	draft.Status = EventPending
	draft.IsCancelled = false
	draft.CurrentAttendees = 0
	draft.CurrentAttendeeList = []primitive.ObjectID{}
	if draft.IsPaid {
		draft.TicketPrice = util.DiscountedPrice(draft.TicketPrice, draft.Discount)
	}
	draft.CreatedAt = now
	draft.UpdatedAt = now
	if draft.Images == nil {
		draft.Images = []string{}
	}
	if draft.Category == nil {
		draft.Category = []primitive.ObjectID{}
	}

	if _, err := queries.DB.Collection("events").InsertOne(ctx, draft); err != nil {
		return nil, err
	}

	return draft, nil
}

// eventFilter resolves an identifier by human-facing event_id first, falling
// back to the internal id. Dual resolution lives here only: callers never
// repeat the fallback.
func eventFilter(identifier string) (bson.M, error) {
	if eventID, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return bson.M{"event_id": eventID}, nil
	}

	oid, err := primitive.ObjectIDFromHex(identifier)
	if err != nil {
		return nil, ErrNotFound
	}
	return bson.M{"_id": oid}, nil
}

// FindEvent resolves identifier (event_id or internal id) to an event.
func (queries *Queries) FindEvent(ctx context.Context, identifier string) (*Event, error) {
	filter, err := eventFilter(identifier)
	if err != nil {
		return nil, err
	}

	var event Event
	if err := queries.DB.Collection("events").FindOne(ctx, filter).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// GetEventByID fetches an event by its internal id.
func (queries *Queries) GetEventByID(ctx context.Context, id primitive.ObjectID) (*Event, error) {
	var event Event
	if err := queries.DB.Collection("events").FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// EventUpdate is the full replacement payload of an update call. Required
// fields are re-validated, the stored ticket price is recomputed from price
// and discount.
type EventUpdate struct {
	Title        string
	Description  string
	Location     string
	Date         string
	StartTime    string
	EndTime      string
	IsPaid       bool
	TicketPrice  float64
	Discount     float64
	MaxAttendees *int64
	FoodStalls   bool
	Images       []string
	Category     []primitive.ObjectID
}

// UpdateEvent re-validates and applies patch, returning the updated document.
func (queries *Queries) UpdateEvent(ctx context.Context, identifier string, patch EventUpdate) (*Event, error) {
	probe := &Event{
		Title:        patch.Title,
		Description:  patch.Description,
		Location:     patch.Location,
		Date:         patch.Date,
		StartTime:    patch.StartTime,
		EndTime:      patch.EndTime,
		IsPaid:       patch.IsPaid,
		TicketPrice:  patch.TicketPrice,
		Discount:     patch.Discount,
		MaxAttendees: patch.MaxAttendees,
	}
	if err := validateEvent(probe); err != nil {
		return nil, err
	}

	price := 0.0
	if patch.IsPaid {
		price = util.DiscountedPrice(patch.TicketPrice, patch.Discount)
	}

	filter, err := eventFilter(identifier)
	if err != nil {
		return nil, err
	}

	set := bson.M{
		"title":         patch.Title,
		"description":   patch.Description,
		"location":      patch.Location,
		"date":          patch.Date,
		"start_time":    patch.StartTime,
		"end_time":      patch.EndTime,
		"is_paid":       patch.IsPaid,
		"ticket_price":  price,
		"discount":      probe.Discount,
		"max_attendees": patch.MaxAttendees,
		"food_stalls":   patch.FoodStalls,
		"updated_at":    time.Now(),
	}
	if patch.Images != nil {
		set["images"] = patch.Images
	}
	if patch.Category != nil {
		set["category"] = patch.Category
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var event Event
	err = queries.DB.Collection("events").FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// CancelEvent is an idempotent soft delete: isCancelled is set once and the
// event stays cancelled from then on.
func (queries *Queries) CancelEvent(ctx context.Context, identifier string) (*Event, error) {
	filter, err := eventFilter(identifier)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var event Event
	err = queries.DB.Collection("events").FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": bson.M{"isCancelled": true, "updated_at": time.Now()}},
		opts,
	).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// DeleteEvent hard-removes an event. Irreversible, admin/organizer action.
func (queries *Queries) DeleteEvent(ctx context.Context, identifier string) error {
	filter, err := eventFilter(identifier)
	if err != nil {
		return err
	}

	res, err := queries.DB.Collection("events").DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetApprovalStatus moves an event among pending/approved/rejected.
func (queries *Queries) SetApprovalStatus(ctx context.Context, identifier string, status ApprovalStatus) (*Event, error) {
	switch status {
	case EventPending, EventApproved, EventRejected:
	default:
		return nil, NewValidationError("Status must be one of pending, approved or rejected")
	}

	filter, err := eventFilter(identifier)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var event Event
	err = queries.DB.Collection("events").FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
		opts,
	).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// RegisterAttendee adds userID to the event's attendee list and bumps the
// counter in one conditional update. The filter rejects the write when the
// user is already on the list or the capacity is reached, so two concurrent
// registrations can never both slip past a full event, and the same user can
// never be counted twice.
func (queries *Queries) RegisterAttendee(ctx context.Context, eventID, userID primitive.ObjectID) error {
	filter := bson.M{
		"_id":                   eventID,
		"current_attendee_list": bson.M{"$ne": userID},
		"$expr": bson.M{"$lt": bson.A{
			"$current_attendees",
			bson.M{"$ifNull": bson.A{"$max_attendees", int64(math.MaxInt64)}},
		}},
	}
	update := bson.M{
		"$inc":      bson.M{"current_attendees": 1},
		"$addToSet": bson.M{"current_attendee_list": userID},
	}

	res, err := queries.DB.Collection("events").UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}

	if res.MatchedCount == 0 {
		// The conditional write lost: find out why
		event, err := queries.GetEventByID(ctx, eventID)
		if err != nil {
			return err
		}
		for _, attendee := range event.CurrentAttendeeList {
			if attendee == userID {
				return ErrDuplicateRegistration
			}
		}
		return ErrCapacityExceeded
	}

	return nil
}

// IsAttendee reports whether userID is on the event's attendee list.
func IsAttendee(event *Event, userID primitive.ObjectID) bool {
	for _, attendee := range event.CurrentAttendeeList {
		if attendee == userID {
			return true
		}
	}
	return false
}

// ListApprovedEvents returns approved, non-cancelled events newest-first: the
// candidate set of every public listing.
func (queries *Queries) ListApprovedEvents(ctx context.Context) ([]Event, error) {
	filter := bson.M{"status": EventApproved, "isCancelled": false}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return queries.findEvents(ctx, filter, opts)
}

// ListOrganizerEvents returns every event owned by userID, newest-first,
// cancelled ones included so organizers can see their full history.
func (queries *Queries) ListOrganizerEvents(ctx context.Context, userID primitive.ObjectID) ([]Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return queries.findEvents(ctx, bson.M{"user_id": userID}, opts)
}

// PopularEvents returns the top `limit` approved events by attendance.
func (queries *Queries) PopularEvents(ctx context.Context, limit int64) ([]Event, error) {
	filter := bson.M{"status": EventApproved, "isCancelled": false}
	opts := options.Find().
		SetSort(bson.D{{Key: "current_attendees", Value: -1}}).
		SetLimit(limit)
	return queries.findEvents(ctx, filter, opts)
}

// EventsByCategories returns approved, non-cancelled events whose category
// set intersects categoryIDs.
func (queries *Queries) EventsByCategories(ctx context.Context, categoryIDs []primitive.ObjectID) ([]Event, error) {
	filter := bson.M{
		"status":      EventApproved,
		"isCancelled": false,
		"category":    bson.M{"$in": categoryIDs},
	}
	return queries.findEvents(ctx, filter, nil)
}

// SearchEvents matches query case-insensitively against title, description
// and category names (via a categories lookup), excluding cancelled events.
// An empty result is not an error.
func (queries *Queries) SearchEvents(ctx context.Context, query string) ([]Event, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}

	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "categories",
			"localField":   "category",
			"foreignField": "_id",
			"as":           "categoryDetails",
		}}},
		{{Key: "$match", Value: bson.M{
			"isCancelled": false,
			"status":      EventApproved,
			"$or": bson.A{
				bson.M{"title": pattern},
				bson.M{"description": pattern},
				bson.M{"categoryDetails.name": pattern},
			},
		}}},
	}

	cur, err := queries.DB.Collection("events").Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (queries *Queries) findEvents(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]Event, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = queries.DB.Collection("events").Find(ctx, filter, opts)
	} else {
		cur, err = queries.DB.Collection("events").Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
