package rank

import (
	"testing"

	"github.com/Massamba505/Events-Api/db"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func eventWithCategories(title string, categories ...primitive.ObjectID) db.Event {
	return db.Event{ID: primitive.NewObjectID(), Title: title, Category: categories}
}

func titles(events []db.Event) []string {
	result := make([]string, len(events))
	for i, event := range events {
		result[i] = event.Title
	}
	return result
}

func TestByPreferenceMovesMatchesFirst(t *testing.T) {
	music := primitive.NewObjectID()
	sport := primitive.NewObjectID()
	tech := primitive.NewObjectID()

	events := []db.Event{
		eventWithCategories("a", sport),
		eventWithCategories("b", music),
		eventWithCategories("c", tech),
		eventWithCategories("d", music, sport),
	}

	ranked := ByPreference(events, []primitive.ObjectID{music})
	require.Equal(t, []string{"b", "d", "a", "c"}, titles(ranked))
}

// Relative order inside each partition is preserved
func TestByPreferenceIsStable(t *testing.T) {
	music := primitive.NewObjectID()

	events := []db.Event{
		eventWithCategories("m1", music),
		eventWithCategories("x1"),
		eventWithCategories("m2", music),
		eventWithCategories("x2"),
		eventWithCategories("m3", music),
	}

	ranked := ByPreference(events, []primitive.ObjectID{music})
	require.Equal(t, []string{"m1", "m2", "m3", "x1", "x2"}, titles(ranked))
}

func TestByPreferenceNoPreferences(t *testing.T) {
	events := []db.Event{
		eventWithCategories("a", primitive.NewObjectID()),
		eventWithCategories("b"),
	}

	ranked := ByPreference(events, nil)
	require.Equal(t, []string{"a", "b"}, titles(ranked))
}

func TestByPreferenceNoMatches(t *testing.T) {
	events := []db.Event{
		eventWithCategories("a", primitive.NewObjectID()),
		eventWithCategories("b", primitive.NewObjectID()),
	}

	ranked := ByPreference(events, []primitive.ObjectID{primitive.NewObjectID()})
	require.Equal(t, []string{"a", "b"}, titles(ranked))
}

func TestByPreferenceEmpty(t *testing.T) {
	require.Empty(t, ByPreference(nil, []primitive.ObjectID{primitive.NewObjectID()}))
}
