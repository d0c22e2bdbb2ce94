package analysis

import "slices"

// DefaultTopGenres is the number of genres kept in a genre distribution.
const DefaultTopGenres = 5

// GenreTally counts genre occurrences across a set of resolved artists.
// It remembers the order genres were first seen so ties can be broken stably.
type GenreTally struct {
	counts map[string]int
	order  []string
}

// NewGenreTally creates an empty tally.
func NewGenreTally() *GenreTally {
	return &GenreTally{counts: make(map[string]int)}
}

// Add counts one occurrence of genre.
func (g *GenreTally) Add(genre string) {
	if _, ok := g.counts[genre]; !ok {
		g.order = append(g.order, genre)
	}
	g.counts[genre]++
}

// AddArtist counts every genre tag of an artist once.
func (g *GenreTally) AddArtist(a ArtistGenres) {
	for _, genre := range a.Genres {
		g.Add(genre)
	}
}

// Count returns the occurrences recorded for genre.
func (g *GenreTally) Count(genre string) int {
	if g == nil {
		return 0
	}
	return g.counts[genre]
}

// Len returns the number of distinct genres.
func (g *GenreTally) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

// Total returns the sum of all genre counts.
func (g *GenreTally) Total() int {
	if g == nil {
		return 0
	}
	total := 0
	for _, c := range g.counts {
		total += c
	}
	return total
}

// AnalyzeGenres converts a tally into a distribution sorted by percentage (descending)
// and truncated to the top n. Percentages are rounded against the sum of all counts.
// Genres with equal percentages keep the order they were first seen in.
// A nil or empty tally yields an empty distribution.
func AnalyzeGenres(tally *GenreTally, n int) []Entry {
	if n <= 0 {
		n = DefaultTopGenres
	}

	total := tally.Total()
	if total == 0 {
		return []Entry{}
	}

	entries := make([]Entry, 0, len(tally.order))
	for _, genre := range tally.order {
		entries = append(entries, Entry{
			Name:       genre,
			Percentage: percentage(tally.counts[genre], total),
		})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Percentage - a.Percentage
	})

	return entries[:min(n, len(entries))]
}
