package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/go-spotify-insights/internal/analysis"
)

// TopTracks retrieves the user's top tracks for a time range.
// Returned tracks carry no audio features.
func (c *Client) TopTracks(ctx context.Context, bearer string, timeRange TimeRange, limit int) ([]analysis.Track, error) {
	ctx, status := withCallStatus(ctx)
	page, err := c.api(bearer).CurrentUsersTopTracks(ctx,
		spotify.Limit(limit),
		spotify.Timerange(spotify.Range(timeRange)),
	)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("fetching top tracks (%s)", timeRange), err, status)
	}

	tracks := make([]analysis.Track, 0, len(page.Tracks))
	for _, t := range page.Tracks {
		tracks = append(tracks, convertTrack(t))
	}
	return tracks, nil
}

// convertTrack converts a Spotify FullTrack to analysis.Track.
func convertTrack(t spotify.FullTrack) analysis.Track {
	artists := make([]analysis.Artist, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = analysis.Artist{ID: a.ID.String(), Name: a.Name}
	}

	images := make([]analysis.Image, len(t.Album.Images))
	for i, img := range t.Album.Images {
		images[i] = analysis.Image{URL: img.URL, Width: int(img.Width), Height: int(img.Height)}
	}

	return analysis.Track{
		ID:           t.ID.String(),
		Name:         t.Name,
		Artists:      artists,
		Album:        analysis.Album{Name: t.Album.Name, Images: images},
		ExternalURLs: t.ExternalURLs,
	}
}
