// Package search discovers candidate official-website URLs for a hotel
// through a prioritized cascade of search providers.
package search

import (
	"context"

	"github.com/sells-group/hotelinfo/internal/model"
)

// Provider is a single candidate source. Implementations return raw,
// unranked results; the Resolver filters and orders them.
type Provider interface {
	Search(ctx context.Context, query model.HotelQuery) ([]model.CandidateURL, error)
	Name() string
}

// queryText builds the search phrase for a hotel query.
func queryText(q model.HotelQuery) string {
	text := q.Name
	if q.Address != "" {
		text += " " + q.Address
	} else if q.City != "" {
		text += " " + q.City
	}
	if q.Postcode != "" {
		text += " " + q.Postcode
	}
	return text + " hotel official website"
}
