// Package rank reorders event listings so items matching a viewer's preferred
// categories come first.
package rank

import (
	"github.com/Massamba505/Events-Api/db"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ByPreference stably partitions events: any event whose category set
// intersects preferred sorts before any event that does not, and relative
// order among ties is the input order. With no preferences it returns the
// input untouched.
func ByPreference(events []db.Event, preferred []primitive.ObjectID) []db.Event {
	if len(preferred) == 0 || len(events) == 0 {
		return events
	}

	preferredSet := make(map[primitive.ObjectID]struct{}, len(preferred))
	for _, id := range preferred {
		preferredSet[id] = struct{}{}
	}

	matched := make([]db.Event, 0, len(events))
	rest := make([]db.Event, 0, len(events))
	for _, event := range events {
		if intersects(event.Category, preferredSet) {
			matched = append(matched, event)
		} else {
			rest = append(rest, event)
		}
	}

	return append(matched, rest...)
}

func intersects(categories []primitive.ObjectID, preferred map[primitive.ObjectID]struct{}) bool {
	for _, id := range categories {
		if _, ok := preferred[id]; ok {
			return true
		}
	}
	return false
}
