package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-insights/internal/analysis"
)

// AudioFeatures retrieves audio features for the given track ids in a single request.
// The result is aligned by position with ids; entries Spotify has no features for are nil.
func (c *Client) AudioFeatures(ctx context.Context, bearer string, ids []string) ([]*analysis.AudioFeatures, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > maxTracksPerRequest {
		return nil, fmt.Errorf("audio features: %d ids exceeds limit of %d", len(ids), maxTracksPerRequest)
	}

	ctx, status := withCallStatus(ctx)
	features, err := c.api(bearer).GetAudioFeatures(ctx, toIDs(ids)...)
	if err != nil {
		return nil, wrapError("fetching audio features", err, status)
	}

	out := make([]*analysis.AudioFeatures, len(features))
	for i, f := range features {
		out[i] = convertAudioFeatures(f)
	}
	return out, nil
}

// convertAudioFeatures copies the mood-relevant feature values. A nil input stays nil.
func convertAudioFeatures(f *spotify.AudioFeatures) *analysis.AudioFeatures {
	if f == nil {
		return nil
	}
	return &analysis.AudioFeatures{
		Energy:       f.Energy,
		Valence:      f.Valence,
		Danceability: f.Danceability,
	}
}

func toIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, len(ids))
	for i, id := range ids {
		out[i] = spotify.ID(id)
	}
	return out
}
