package skills

import (
	"context"
	"errors"
	"testing"
)

type fakeSearcher struct {
	gotQuery string
	gotMax   int
	results  []Result
	err      error
}

func (f *fakeSearcher) Search(_ context.Context, query string, max int) ([]Result, error) {
	f.gotQuery = query
	f.gotMax = max
	return f.results, f.err
}

func TestWeatherReport(t *testing.T) {
	search := &fakeSearcher{
		results: []Result{{Title: "Weather", Body: "Sunny, 24 degrees."}},
	}
	w := NewWeather(search)

	got := w.Report(context.Background(), "Tokyo")
	if got != "Sunny, 24 degrees." {
		t.Errorf("report = %q", got)
	}
	if search.gotQuery != "weather in Tokyo" {
		t.Errorf("query = %q", search.gotQuery)
	}
	if search.gotMax != 1 {
		t.Errorf("max = %d, want 1", search.gotMax)
	}
}

func TestWeatherReportSearchError(t *testing.T) {
	w := NewWeather(&fakeSearcher{err: errors.New("network down")})

	got := w.Report(context.Background(), "Tokyo")
	if got != "Sorry, I faced an error getting the weather." {
		t.Errorf("report = %q", got)
	}
}

func TestWeatherReportNoResults(t *testing.T) {
	w := NewWeather(&fakeSearcher{})

	got := w.Report(context.Background(), "Atlantis")
	if got != "I couldn't find the weather information." {
		t.Errorf("report = %q", got)
	}
}
