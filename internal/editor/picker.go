package editor

import (
	"strings"

	"pagechat/internal/models"
)

// DefaultSuggestionLimit bounds the mention suggestion list.
const DefaultSuggestionLimit = 8

// FilterSuggestions narrows candidates to those whose display name or
// email contains query (case-insensitive). An empty query returns the
// first limit candidates; input order is preserved either way.
func FilterSuggestions(candidates []models.UserMention, query string, limit int) []models.UserMention {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]models.UserMention, 0, limit)
	for _, m := range candidates {
		if q != "" &&
			!strings.Contains(strings.ToLower(m.DisplayName), q) &&
			!strings.Contains(strings.ToLower(m.Email), q) {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out
}
