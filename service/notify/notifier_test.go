package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/service/mail"
	"github.com/Massamba505/Events-Api/service/worker"
	"github.com/Massamba505/Events-Api/util"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Distributor double recording every enqueued email, optionally failing for
// chosen recipients.
type stubDistributor struct {
	mu      sync.Mutex
	sent    []worker.SendEmailNotificationPayload
	failFor map[string]bool
}

func (stub *stubDistributor) DistributeTask(ctx context.Context, name string, payload any, opts ...asynq.Option) error {
	email, ok := payload.(worker.SendEmailNotificationPayload)
	if !ok {
		return errors.New("unexpected payload type")
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if stub.failFor[email.Email] {
		return errors.New("enqueue failed")
	}
	stub.sent = append(stub.sent, email)
	return nil
}

func insertTestUser(t *testing.T) *db.User {
	t.Helper()

	user := &db.User{
		ID:        primitive.NewObjectID(),
		Fullname:  "Attendee " + util.RandomString(4),
		Email:     util.RandomString(8) + "@example.com",
		Role:      db.Customer,
		CreatedAt: time.Now(),
	}
	_, err := queries.DB.Collection("users").InsertOne(context.Background(), user)
	require.NoError(t, err)
	return user
}

func insertEventWithAttendees(t *testing.T, attendees ...primitive.ObjectID) *db.Event {
	t.Helper()

	event := &db.Event{
		ID:                  primitive.NewObjectID(),
		Title:               "Fanout Test " + util.RandomString(6),
		Date:                "25/12/2026",
		CurrentAttendees:    int64(len(attendees)),
		CurrentAttendeeList: attendees,
	}
	_, err := queries.DB.Collection("events").InsertOne(context.Background(), event)
	require.NoError(t, err)
	return event
}

// Every current attendee gets exactly one notification record and one
// enqueued email.
func TestNotifyAttendeesFanOut(t *testing.T) {
	requireMongo(t)

	users := []*db.User{insertTestUser(t), insertTestUser(t), insertTestUser(t)}
	attendees := make([]primitive.ObjectID, len(users))
	for i, user := range users {
		attendees[i] = user.ID
	}
	event := insertEventWithAttendees(t, attendees...)

	distributor := &stubDistributor{}
	notifier := NewNotifier(queries, distributor)

	message := "The venue has changed"
	require.NoError(t, notifier.NotifyAttendees(context.Background(), event, message))

	require.Len(t, distributor.sent, len(users))
	subject := mail.EventSubject(event.Title)
	for _, sent := range distributor.sent {
		require.Equal(t, subject, sent.Subject)
		require.Equal(t, message, sent.Body)
	}

	for _, user := range users {
		records, err := queries.ListNotifications(context.Background(), user.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
		require.Equal(t, message, records[0].Message)
		require.Equal(t, event.ID, *records[0].EventID)
		require.False(t, records[0].IsRead)
	}
}

// A failing enqueue for one recipient never aborts the batch: everyone still
// gets their notification record.
func TestNotifyAttendeesEnqueueFailureSwallowed(t *testing.T) {
	requireMongo(t)

	healthy := insertTestUser(t)
	broken := insertTestUser(t)
	event := insertEventWithAttendees(t, healthy.ID, broken.ID)

	distributor := &stubDistributor{failFor: map[string]bool{broken.Email: true}}
	notifier := NewNotifier(queries, distributor)

	require.NoError(t, notifier.NotifyAttendees(context.Background(), event, "Start time moved"))

	require.Len(t, distributor.sent, 1)
	require.Equal(t, healthy.Email, distributor.sent[0].Email)

	for _, user := range []*db.User{healthy, broken} {
		records, err := queries.ListNotifications(context.Background(), user.ID)
		require.NoError(t, err)
		require.Len(t, records, 1)
	}
}

// An attendee with no user record is skipped; the rest of the batch is
// unaffected.
func TestNotifyAttendeesUnknownUserSkipped(t *testing.T) {
	requireMongo(t)

	known := insertTestUser(t)
	event := insertEventWithAttendees(t, known.ID, primitive.NewObjectID())

	distributor := &stubDistributor{}
	notifier := NewNotifier(queries, distributor)

	require.NoError(t, notifier.NotifyAttendees(context.Background(), event, "Date changed"))

	require.Len(t, distributor.sent, 1)
	records, err := queries.ListNotifications(context.Background(), known.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestNotifyAttendeesEmptyList(t *testing.T) {
	requireMongo(t)

	event := insertEventWithAttendees(t)
	distributor := &stubDistributor{}

	require.NoError(t, NewNotifier(queries, distributor).NotifyAttendees(context.Background(), event, "nobody home"))
	require.Empty(t, distributor.sent)
}
