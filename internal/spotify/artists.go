package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-insights/internal/analysis"
)

// Artists retrieves genre metadata for up to MaxArtistsPerRequest artists.
// Ids Spotify does not recognise are left out of the result.
func (c *Client) Artists(ctx context.Context, bearer string, ids []string) ([]analysis.ArtistGenres, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxArtistsPerRequest {
		return nil, fmt.Errorf("artists: %d ids exceeds limit of %d", len(ids), MaxArtistsPerRequest)
	}

	ctx, status := withCallStatus(ctx)
	artists, err := c.api(bearer).GetArtists(ctx, toIDs(ids)...)
	if err != nil {
		return nil, wrapError("fetching artists", err, status)
	}

	out := make([]analysis.ArtistGenres, 0, len(artists))
	for _, a := range artists {
		if a == nil {
			continue
		}
		out = append(out, analysis.ArtistGenres{ID: a.ID.String(), Genres: a.Genres})
	}
	return out, nil
}

// TopArtists retrieves the user's top artists for a time range as returned by Spotify.
func (c *Client) TopArtists(ctx context.Context, bearer string, timeRange TimeRange, limit int) (*spotify.FullArtistPage, error) {
	ctx, status := withCallStatus(ctx)
	page, err := c.api(bearer).CurrentUsersTopArtists(ctx,
		spotify.Limit(limit),
		spotify.Timerange(spotify.Range(timeRange)),
	)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("fetching top artists (%s)", timeRange), err, status)
	}
	return page, nil
}
