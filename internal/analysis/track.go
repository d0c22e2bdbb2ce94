// Package analysis derives mood and genre distributions from a user's top tracks.
package analysis

// Track represents a top track with its metadata and, once enriched, its audio features.
type Track struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []Artist          `json:"artists"`
	Album        Album             `json:"album"`
	ExternalURLs map[string]string `json:"external_urls,omitempty"`
	// Features is nil if not fetched or unavailable
	Features *AudioFeatures `json:"audio_features,omitempty"`
}

// Artist is an artist reference on a track.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album holds the album name and its cover art.
type Album struct {
	Name   string  `json:"name"`
	Images []Image `json:"images,omitempty"`
}

// Image is a piece of album art.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// AudioFeatures holds the audio features used for mood analysis. Values are in [0, 1].
type AudioFeatures struct {
	Energy       float32 `json:"energy"`
	Valence      float32 `json:"valence"`
	Danceability float32 `json:"danceability"`
}

// ArtistGenres is the genre metadata of a single resolved artist.
type ArtistGenres struct {
	ID     string
	Genres []string
}

// ArtistIDs returns the IDs of every artist on the track, in order.
func (t Track) ArtistIDs() []string {
	ids := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		ids = append(ids, a.ID)
	}
	return ids
}
