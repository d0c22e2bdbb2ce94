package insights

import (
	"context"
	"fmt"

	"github.com/justestif/go-spotify-insights/internal/analysis"
)

// FeatureSource fetches audio features for a batch of track ids, aligned by position.
type FeatureSource interface {
	AudioFeatures(ctx context.Context, bearer string, ids []string) ([]*analysis.AudioFeatures, error)
}

// FeatureEnricher attaches audio features to a batch of tracks.
type FeatureEnricher struct {
	source FeatureSource
}

// NewFeatureEnricher creates a FeatureEnricher.
func NewFeatureEnricher(source FeatureSource) *FeatureEnricher {
	return &FeatureEnricher{source: source}
}

// Enrich returns a copy of tracks with features attached in a single request.
// Feature i goes to track i; ids in the response are not consulted.
// A missing or null position leaves that track without features. A failed
// request fails the whole batch.
func (e *FeatureEnricher) Enrich(ctx context.Context, bearer string, tracks []analysis.Track) ([]analysis.Track, error) {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}

	features, err := e.source.AudioFeatures(ctx, bearer, ids)
	if err != nil {
		return nil, fmt.Errorf("enriching tracks: %w", err)
	}

	enriched := make([]analysis.Track, len(tracks))
	for i, t := range tracks {
		t.Features = nil
		if i < len(features) && features[i] != nil {
			f := *features[i]
			t.Features = &f
		}
		enriched[i] = t
	}
	return enriched, nil
}
