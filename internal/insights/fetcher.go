package insights

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-spotify-insights/internal/analysis"
	"github.com/justestif/go-spotify-insights/internal/spotify"
)

// ErrNoTopTracks is returned when no fallback window yields any top tracks.
// New accounts without listening history end up here.
var ErrNoTopTracks = errors.New("no top tracks found for any time range")

// TopTracksLimit is the number of tracks requested per window.
const TopTracksLimit = 30

// FallbackWindows are tried in order until one returns tracks.
var FallbackWindows = []spotify.TimeRange{spotify.ShortTerm, spotify.MediumTerm, spotify.LongTerm}

// TrackSource fetches a user's top tracks for one window.
type TrackSource interface {
	TopTracks(ctx context.Context, bearer string, timeRange spotify.TimeRange, limit int) ([]analysis.Track, error)
}

// TrackFetcher retrieves top tracks, falling back to longer windows when a window is empty.
type TrackFetcher struct {
	source TrackSource
	logger *log.Logger
}

// NewTrackFetcher creates a TrackFetcher. A nil logger discards output.
func NewTrackFetcher(source TrackSource, logger *log.Logger) *TrackFetcher {
	return &TrackFetcher{source: source, logger: orDiscard(logger)}
}

// Fetch returns the first non-empty window's tracks.
// A window that errors is treated like an empty one. If every window comes back
// empty the result is ErrNoTopTracks, unless ctx was cancelled.
func (f *TrackFetcher) Fetch(ctx context.Context, bearer string) ([]analysis.Track, error) {
	for _, window := range FallbackWindows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tracks, err := f.source.TopTracks(ctx, bearer, window, TopTracksLimit)
		if err != nil {
			f.logger.Warn("top tracks window failed", "time_range", window, "err", err)
			continue
		}
		if len(tracks) == 0 {
			f.logger.Debug("top tracks window empty", "time_range", window)
			continue
		}

		f.logger.Debug("top tracks window accepted", "time_range", window, "count", len(tracks))
		return tracks, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoTopTracks
}
