// Package notify fans attendee-facing messages out on two channels: a
// best-effort email per attendee through the task queue, and a persistent
// in-app notification record per attendee.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Massamba505/Events-Api/db"
	"github.com/Massamba505/Events-Api/service/mail"
	"github.com/Massamba505/Events-Api/service/worker"
	"github.com/Massamba505/Events-Api/util"
	"github.com/hibiken/asynq"
)

type Notifier struct {
	queries     *db.Queries
	distributor worker.TaskDistributor
}

func NewNotifier(queries *db.Queries, distributor worker.TaskDistributor) *Notifier {
	return &Notifier{queries: queries, distributor: distributor}
}

// NotifyAttendees delivers message to every registered attendee of event.
// Email delivery is best-effort per recipient; the notification records are
// written in one bulk insert regardless of email outcomes.
func (notifier *Notifier) NotifyAttendees(ctx context.Context, event *db.Event, message string) error {
	if len(event.CurrentAttendeeList) == 0 {
		return nil
	}

	subject := mail.EventSubject(event.Title)
	records := make([]db.Notification, 0, len(event.CurrentAttendeeList))

	for _, attendeeID := range event.CurrentAttendeeList {
		attendee, err := notifier.queries.GetUser(ctx, attendeeID)
		if err != nil {
			util.LOGGER.Warn("Failed to load attendee for notification",
				"user", attendeeID.Hex(), "event", event.ID.Hex(), "error", err)
			continue
		}

		err = notifier.distributor.DistributeTask(ctx, worker.SendEmailNotification, worker.SendEmailNotificationPayload{
			Email:   attendee.Email,
			Subject: subject,
			Body:    message,
		}, asynq.Queue(worker.LOW))
		if err != nil {
			util.LOGGER.Warn("Failed to enqueue notification email",
				"user", attendeeID.Hex(), "event", event.ID.Hex(), "error", err)
		}

		eventID := event.ID
		records = append(records, db.Notification{
			UserID:    attendeeID,
			EventID:   &eventID,
			Message:   message,
			CreatedAt: time.Now(),
		})
	}

	return notifier.queries.BulkCreateNotifications(ctx, records)
}

// UpdateMessage summarizes what changed between two revisions of an event.
func UpdateMessage(before, after *db.Event) string {
	var changes []string
	add := func(field, from, to string) {
		changes = append(changes, fmt.Sprintf("%s changed from %s to %s", field, from, to))
	}

	if before.Date != after.Date {
		add("date", before.Date, after.Date)
	}
	if before.StartTime != after.StartTime || before.EndTime != after.EndTime {
		add("time",
			fmt.Sprintf("%s-%s", before.StartTime, before.EndTime),
			fmt.Sprintf("%s-%s", after.StartTime, after.EndTime))
	}
	if before.Location != after.Location {
		add("location", before.Location, after.Location)
	}
	if before.TicketPrice != after.TicketPrice {
		add("ticket price", fmt.Sprintf("%.2f", before.TicketPrice), fmt.Sprintf("%.2f", after.TicketPrice))
	}
	if before.Discount != after.Discount {
		add("discount", fmt.Sprintf("%.0f%%", before.Discount), fmt.Sprintf("%.0f%%", after.Discount))
	}
	if capacity(before) != capacity(after) {
		add("capacity", capacity(before), capacity(after))
	}
	if before.FoodStalls != after.FoodStalls {
		changes = append(changes, "food stall availability changed")
	}

	if len(changes) == 0 {
		return fmt.Sprintf("The event '%s' has been updated.", after.Title)
	}
	return fmt.Sprintf("The event '%s' has been updated: %s.", after.Title, strings.Join(changes, "; "))
}

// CancelMessage is sent to attendees when an organizer cancels an event.
func CancelMessage(event *db.Event) string {
	return fmt.Sprintf(
		"We are sorry to inform you that the event '%s' scheduled for %s has been cancelled. We apologize for any inconvenience.",
		event.Title, event.Date)
}

func capacity(event *db.Event) string {
	if event.MaxAttendees == nil {
		return "unlimited"
	}
	return fmt.Sprintf("%d", *event.MaxAttendees)
}
