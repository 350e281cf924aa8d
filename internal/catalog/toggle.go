package catalog

// ToggleFavorite removes eventID from favorites when present, otherwise appends it.
// The input is never modified.
func ToggleFavorite(favorites []string, eventID string) []string {
	return toggle(favorites, eventID)
}

// ToggleParticipation removes userID from participants when present, otherwise appends it.
// The input is never modified.
func ToggleParticipation(participants []string, userID string) []string {
	return toggle(participants, userID)
}

func toggle(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, v := range ids {
		if v == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		out = append(out, id)
	}
	return out
}
