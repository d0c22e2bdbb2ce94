package analysis

import "math"

// Mood is a bucket a track can contribute to.
// Buckets are not mutually exclusive: one track may count toward several.
type Mood string

const (
	MoodEnergetic   Mood = "energetic"
	MoodChill       Mood = "chill"
	MoodHappy       Mood = "happy"
	MoodMelancholic Mood = "melancholic"
	MoodDanceable   Mood = "danceable"
)

// Moods lists every bucket in the order it is reported.
var Moods = []Mood{MoodEnergetic, MoodChill, MoodHappy, MoodMelancholic, MoodDanceable}

// Mood thresholds. All comparisons are strict, so a value equal to a
// threshold counts toward neither side.
const (
	highEnergy       = 0.7
	lowEnergy        = 0.4
	highValence      = 0.6
	lowValence       = 0.4
	highDanceability = 0.6
)

// Entry is one line of a distribution.
type Entry struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
}

// classifyMoods returns the buckets a set of audio features falls into.
//
//   - energy > 0.7 is energetic, energy < 0.4 is chill
//   - valence > 0.6 is happy, valence < 0.4 is melancholic
//   - danceability > 0.6 is danceable
func classifyMoods(f *AudioFeatures) []Mood {
	if f == nil {
		return nil
	}

	var moods []Mood

	switch {
	case f.Energy > highEnergy:
		moods = append(moods, MoodEnergetic)
	case f.Energy < lowEnergy:
		moods = append(moods, MoodChill)
	}

	switch {
	case f.Valence > highValence:
		moods = append(moods, MoodHappy)
	case f.Valence < lowValence:
		moods = append(moods, MoodMelancholic)
	}

	if f.Danceability > highDanceability {
		moods = append(moods, MoodDanceable)
	}

	return moods
}

// AnalyzeMoods returns the mood distribution of a batch, one entry per bucket in [Moods] order.
// Percentages are relative to the whole batch, so tracks without audio features
// lower every bucket without shrinking the denominator. Each bucket is rounded on
// its own and the entries need not sum to 100.
func AnalyzeMoods(tracks []Track) []Entry {
	counts := make(map[Mood]int, len(Moods))
	for _, t := range tracks {
		for _, m := range classifyMoods(t.Features) {
			counts[m]++
		}
	}

	entries := make([]Entry, len(Moods))
	for i, m := range Moods {
		entries[i] = Entry{
			Name:       string(m),
			Percentage: percentage(counts[m], len(tracks)),
		}
	}
	return entries
}

// percentage returns round(count / total * 100), or 0 for an empty total.
func percentage(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
