package notify

import (
	"testing"

	"github.com/Massamba505/Events-Api/db"
	"github.com/stretchr/testify/require"
)

func baseEvent() *db.Event {
	capacity := int64(100)
	return &db.Event{
		Title:        "Jazz Night",
		Date:         "25/12/2026",
		StartTime:    "18:00",
		EndTime:      "22:00",
		Location:     "Great Hall",
		TicketPrice:  80,
		Discount:     20,
		MaxAttendees: &capacity,
	}
}

func TestUpdateMessageNoChanges(t *testing.T) {
	event := baseEvent()
	message := UpdateMessage(event, event)
	require.Equal(t, "The event 'Jazz Night' has been updated.", message)
}

func TestUpdateMessageSummarizesChanges(t *testing.T) {
	before := baseEvent()
	after := baseEvent()
	after.Date = "26/12/2026"
	after.Location = "Small Hall"
	after.TicketPrice = 64

	message := UpdateMessage(before, after)
	require.Contains(t, message, "Jazz Night")
	require.Contains(t, message, "date changed from 25/12/2026 to 26/12/2026")
	require.Contains(t, message, "location changed from Great Hall to Small Hall")
	require.Contains(t, message, "ticket price changed from 80.00 to 64.00")
	require.NotContains(t, message, "discount")
}

func TestUpdateMessageCapacityToUnlimited(t *testing.T) {
	before := baseEvent()
	after := baseEvent()
	after.MaxAttendees = nil

	message := UpdateMessage(before, after)
	require.Contains(t, message, "capacity changed from 100 to unlimited")
}

func TestCancelMessage(t *testing.T) {
	message := CancelMessage(baseEvent())
	require.Contains(t, message, "Jazz Night")
	require.Contains(t, message, "25/12/2026")
	require.Contains(t, message, "cancelled")
}
