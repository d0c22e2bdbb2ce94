package spotify

import (
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// TimeRange is the listening window a "top" query covers.
type TimeRange string

const (
	ShortTerm  TimeRange = TimeRange(spotify.ShortTermRange)
	MediumTerm TimeRange = TimeRange(spotify.MediumTermRange)
	LongTerm   TimeRange = TimeRange(spotify.LongTermRange)
)

const (
	// MaxArtistsPerRequest is the provider's hard limit on ids per artists lookup.
	MaxArtistsPerRequest = 50
	// maxTracksPerRequest is the provider's limit on ids per audio features lookup.
	maxTracksPerRequest = 100
)

// ErrUpstream matches every error returned for a failed Spotify call.
var ErrUpstream = errors.New("spotify upstream unavailable")

// UpstreamError describes a failed Spotify call.
// Status is the HTTP status returned by Spotify, or 0 for transport failures
// and malformed responses.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("spotify: %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("spotify: %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrUpstream.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Status
	}
	return 0
}

// wrapError converts an error from the API client into an UpstreamError.
// The status recorded by the transport wins over the one in the error body.
func wrapError(op string, err error, call *callStatus) error {
	if err == nil {
		return nil
	}

	status := 0
	var apiErr spotify.Error
	var apiErrPtr *spotify.Error
	switch {
	case call != nil && call.code.Load() != 0:
		status = int(call.code.Load())
	case errors.As(err, &apiErr):
		status = apiErr.Status
	case errors.As(err, &apiErrPtr):
		status = apiErrPtr.Status
	}

	return &UpstreamError{Op: op, Status: status, Err: err}
}
