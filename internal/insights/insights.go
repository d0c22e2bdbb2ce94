// Package insights runs the top tracks pipeline and assembles the responses
// served to a signed-in user.
package insights

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	zspotify "github.com/zmb3/spotify/v2"
	"golang.org/x/sync/errgroup"

	"github.com/justestif/go-spotify-insights/internal/analysis"
	"github.com/justestif/go-spotify-insights/internal/logging"
	"github.com/justestif/go-spotify-insights/internal/metrics"
	"github.com/justestif/go-spotify-insights/internal/spotify"
)

const (
	// DisplayedTracks caps the tracks returned to the caller. Analysis still covers the full batch.
	DisplayedTracks = 5
	// TopArtistsLimit is the number of top artists requested.
	TopArtistsLimit = 5
)

// Provider is the subset of the Spotify API the service needs.
type Provider interface {
	TrackSource
	FeatureSource
	ArtistSource
	TopArtists(ctx context.Context, bearer string, timeRange spotify.TimeRange, limit int) (*zspotify.FullArtistPage, error)
}

// BearerSource yields a usable access token for a session.
type BearerSource interface {
	Bearer(ctx context.Context, sessionID string) (string, error)
}

// Analysis holds the mood and genre distributions of a track batch.
type Analysis struct {
	Moods  []analysis.Entry `json:"moods"`
	Genres []analysis.Entry `json:"genres"`
}

// TopTracksResult is the top tracks response.
type TopTracksResult struct {
	Tracks   []analysis.Track `json:"tracks"`
	Analysis Analysis         `json:"analysis"`
}

// Summary combines the top artists and top tracks responses.
type Summary struct {
	TopArtists *zspotify.FullArtistPage `json:"topArtists"`
	TopTracks  *TopTracksResult         `json:"topTracks"`
}

// Service assembles insights for a session.
type Service struct {
	gate     BearerSource
	provider Provider
	fetcher  *TrackFetcher
	enricher *FeatureEnricher
	resolver *GenreResolver
	logger   *log.Logger
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	logger  *log.Logger
	metrics *metrics.Metrics
}

// WithLogger sets the logger used by the service and its stages.
func WithLogger(l *log.Logger) Option {
	return func(o *serviceOptions) {
		o.logger = l
	}
}

// WithMetrics records skipped artist batches in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *serviceOptions) {
		o.metrics = m
	}
}

// New creates a Service.
func New(gate BearerSource, provider Provider, opts ...Option) *Service {
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.Component(o.logger, "insights")

	return &Service{
		gate:     gate,
		provider: provider,
		fetcher:  NewTrackFetcher(provider, logger),
		enricher: NewFeatureEnricher(provider),
		resolver: NewGenreResolver(provider, logger, o.metrics),
		logger:   logger,
	}
}

// TopTracks runs the full pipeline for the session: fetch, enrich, resolve genres, aggregate.
// It returns ErrNoTopTracks when the user has no listening history in any window.
func (s *Service) TopTracks(ctx context.Context, sessionID string) (*TopTracksResult, error) {
	bearer, err := s.gate.Bearer(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	tracks, err := s.fetcher.Fetch(ctx, bearer)
	if err != nil {
		return nil, err
	}

	enriched, err := s.enricher.Enrich(ctx, bearer, tracks)
	if err != nil {
		return nil, err
	}

	tally, err := s.resolver.Resolve(ctx, bearer, enriched)
	if err != nil {
		return nil, err
	}

	result := &TopTracksResult{
		Tracks:   enriched[:min(DisplayedTracks, len(enriched))],
		Analysis: Aggregate(enriched, tally),
	}
	s.logger.Debug("top tracks analysed",
		"tracks", len(enriched),
		"artist_genres", tally.Total(),
	)
	return result, nil
}

// TopArtists returns the session's short term top artists as Spotify reports them.
func (s *Service) TopArtists(ctx context.Context, sessionID string) (*zspotify.FullArtistPage, error) {
	bearer, err := s.gate.Bearer(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.provider.TopArtists(ctx, bearer, spotify.ShortTerm, TopArtistsLimit)
}

// Summary fetches top artists and top tracks concurrently and fails on the first error.
func (s *Service) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	var summary Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		page, err := s.TopArtists(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("top artists: %w", err)
		}
		summary.TopArtists = page
		return nil
	})
	g.Go(func() error {
		result, err := s.TopTracks(gctx, sessionID)
		if err != nil {
			return fmt.Errorf("top tracks: %w", err)
		}
		summary.TopTracks = result
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Aggregate reduces an enriched batch and its genre tally to distributions.
func Aggregate(tracks []analysis.Track, tally *analysis.GenreTally) Analysis {
	return Analysis{
		Moods:  analysis.AnalyzeMoods(tracks),
		Genres: analysis.AnalyzeGenres(tally, analysis.DefaultTopGenres),
	}
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return logging.Discard()
	}
	return l
}
