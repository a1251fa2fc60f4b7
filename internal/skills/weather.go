package skills

import (
	"context"
	"fmt"
	log "log/slog"
)

// Weather answers "weather in {city}" through a single-result web
// search. Any failure degrades to a fixed apology, never an error.
type Weather struct {
	search Searcher
}

func NewWeather(search Searcher) *Weather {
	return &Weather{search: search}
}

func (w *Weather) Report(ctx context.Context, city string) string {
	query := fmt.Sprintf("weather in %s", city)

	results, err := w.search.Search(ctx, query, 1)
	if err != nil {
		log.Warn("weather lookup failed", "city", city, "err", err)
		return "Sorry, I faced an error getting the weather."
	}
	if len(results) == 0 {
		return "I couldn't find the weather information."
	}
	return results[0].Body
}
