package catalog

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleFavorite(t *testing.T) {
	tests := []struct {
		name      string
		favorites []string
		eventID   string
		want      []string
	}{
		{name: "add to empty", favorites: []string{}, eventID: "e1", want: []string{"e1"}},
		{name: "add to nil", favorites: nil, eventID: "e1", want: []string{"e1"}},
		{name: "append keeps order", favorites: []string{"e1", "e2"}, eventID: "e3", want: []string{"e1", "e2", "e3"}},
		{name: "remove from middle", favorites: []string{"e1", "e2", "e3"}, eventID: "e2", want: []string{"e1", "e3"}},
		{name: "remove only", favorites: []string{"e1"}, eventID: "e1", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := slices.Clone(tt.favorites)
			got := ToggleFavorite(tt.favorites, tt.eventID)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, before, tt.favorites, "input must not be modified")
		})
	}
}

func TestToggleFavorite_neverDuplicatesAndPreservesOthers(t *testing.T) {
	favorites := []string{"a", "b", "c", "d"}
	for _, id := range []string{"a", "c", "x", "d", "x", "y"} {
		next := ToggleFavorite(favorites, id)
		seen := map[string]bool{}
		for _, v := range next {
			assert.False(t, seen[v], "duplicate %q after toggling %q", v, id)
			seen[v] = true
		}
		for _, other := range favorites {
			if other != id {
				assert.Contains(t, next, other)
			}
		}
		favorites = next
	}
}

func TestToggleParticipation_roundTrip(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		userID       string
	}{
		{name: "absent user", participants: []string{"u1", "u2"}, userID: "u3"},
		{name: "empty roster", participants: []string{}, userID: "u1"},
		{name: "present user at end", participants: []string{"u1", "u2"}, userID: "u2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := ToggleParticipation(tt.participants, tt.userID)
			twice := ToggleParticipation(once, tt.userID)
			assert.Equal(t, tt.participants, twice)
		})
	}
}

func TestToggleParticipation_presentInMiddleKeepsMembership(t *testing.T) {
	participants := []string{"u1", "u2", "u3"}
	twice := ToggleParticipation(ToggleParticipation(participants, "u2"), "u2")
	assert.ElementsMatch(t, participants, twice)
	assert.Len(t, twice, 3)
}
