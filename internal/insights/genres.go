package insights

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/justestif/go-spotify-insights/internal/analysis"
	"github.com/justestif/go-spotify-insights/internal/metrics"
	"github.com/justestif/go-spotify-insights/internal/spotify"
)

// ArtistSource fetches genre metadata for at most spotify.MaxArtistsPerRequest artists.
type ArtistSource interface {
	Artists(ctx context.Context, bearer string, ids []string) ([]analysis.ArtistGenres, error)
}

// GenreResolver tallies genres across the unique artists of a track batch.
type GenreResolver struct {
	source    ArtistSource
	batchSize int
	logger    *log.Logger
	metrics   *metrics.Metrics
}

// NewGenreResolver creates a GenreResolver. logger and m may be nil.
func NewGenreResolver(source ArtistSource, logger *log.Logger, m *metrics.Metrics) *GenreResolver {
	return &GenreResolver{
		source:    source,
		batchSize: spotify.MaxArtistsPerRequest,
		logger:    orDiscard(logger),
		metrics:   m,
	}
}

// Resolve looks up every artist referenced by tracks once and counts each
// (artist, genre) pair once, however many tracks the artist appears on.
// Batches are fetched one after another. A failed batch is logged and skipped.
// The only error returned is ctx's.
func (r *GenreResolver) Resolve(ctx context.Context, bearer string, tracks []analysis.Track) (*analysis.GenreTally, error) {
	tally := analysis.NewGenreTally()
	ids := uniqueArtistIDs(tracks)

	for start := 0; start < len(ids); start += r.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+r.batchSize, len(ids))
		artists, err := r.source.Artists(ctx, bearer, ids[start:end])
		if err != nil {
			r.logger.Warn("skipping artist batch", "offset", start, "size", end-start, "err", err)
			if r.metrics != nil {
				r.metrics.SkippedArtistBatches.Inc()
			}
			continue
		}

		for _, a := range artists {
			tally.AddArtist(a)
		}
	}

	return tally, nil
}

// uniqueArtistIDs returns the distinct non-empty artist ids in first-seen order.
func uniqueArtistIDs(tracks []analysis.Track) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, t := range tracks {
		for _, id := range t.ArtistIDs() {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
