// Package displaymedia requests a screen-capture stream from a platform
// capture provider and hands it back as a mediastream.MediaStream.
//
// A request is validated before the provider is touched. The provider is then
// called exactly once and the returned Pending settles exactly once: with a
// stream, with a *mediastream.Error wrapping the provider failure, or with
// the raw error raised while the stream was being assembled.
package displaymedia

import (
	"errors"
	"fmt"

	"go2tv.app/displaymedia/mediastream"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoProvider      = errors.New("displaymedia: capture provider is required")
	ErrNoDescriptor    = errors.New("displaymedia: capture provider returned no descriptor")
	ErrNoStream        = errors.New("displaymedia: stream constructor returned no stream")
)

// TypeError is returned for requests rejected before reaching the provider.
// It matches ErrInvalidArgument with errors.Is.
type TypeError struct {
	Reason string
}

func (e *TypeError) Error() string {
	return "displaymedia: type error: " + e.Reason
}

func (e *TypeError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// PanicError carries a non-error value recovered from a panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("displaymedia: panic: %v", e.Value)
}

// Constraints describes a capture request. Only Video is interpreted and it
// must be set; a nil *Constraints is rejected.
type Constraints struct {
	Video bool
	Audio bool
}

// CaptureDescriptor is what a provider returns on success.
type CaptureDescriptor struct {
	StreamID string
	Track    mediastream.TrackInfo
}

// CaptureProvider obtains a screen-capture stream from the platform. The
// call may block for as long as the platform needs, including while the user
// is asked for consent.
type CaptureProvider interface {
	RequestCapture() (*CaptureDescriptor, error)
}

// StreamReleaser is implemented by providers that hold platform resources
// for a descriptor until they are released.
type StreamReleaser interface {
	Release(streamID string) error
}

// CaptureProviderFunc adapts a function to CaptureProvider.
type CaptureProviderFunc func() (*CaptureDescriptor, error)

func (f CaptureProviderFunc) RequestCapture() (*CaptureDescriptor, error) {
	return f()
}

// StreamConstructor builds a stream from a stream record.
type StreamConstructor func(mediastream.StreamInfo) (*mediastream.MediaStream, error)

// ErrorNormalizer wraps a raw provider error.
type ErrorNormalizer func(error) *mediastream.Error

// Options configures a Requester. Only Provider is required.
type Options struct {
	Provider CaptureProvider

	// Platform reports the current platform. Default is RuntimePlatform.
	Platform PlatformProbe
	// SupportedPlatform is the only platform requests are accepted on.
	// Default is DefaultSupportedPlatform.
	SupportedPlatform string

	Construct StreamConstructor
	Normalize ErrorNormalizer

	// Logf receives the diagnostic emitted when stream assembly fails.
	// Default writes to the package logger.
	Logf func(format string, args ...any)
}

// Requester runs capture requests. It holds no per-request state and is safe
// for concurrent use.
type Requester struct {
	provider  CaptureProvider
	platform  PlatformProbe
	supported string
	construct StreamConstructor
	normalize ErrorNormalizer
	logf      func(format string, args ...any)
}

// New returns a Requester using the collaborators in options.
func New(options *Options) (*Requester, error) {
	if options == nil || options.Provider == nil {
		return nil, ErrNoProvider
	}

	r := &Requester{
		provider:  options.Provider,
		platform:  options.Platform,
		supported: options.SupportedPlatform,
		construct: options.Construct,
		normalize: options.Normalize,
		logf:      options.Logf,
	}
	if r.platform == nil {
		r.platform = RuntimePlatform
	}
	if r.supported == "" {
		r.supported = DefaultSupportedPlatform
	}
	if r.construct == nil {
		r.construct = mediastream.New
	}
	if r.normalize == nil {
		r.normalize = mediastream.NewError
	}
	if r.logf == nil {
		r.logf = diagnosticf
	}
	return r, nil
}

// GetDisplayMedia starts a capture request and returns its pending result.
// Invalid requests come back already settled. There is no way to abort a
// request once the provider has been called, and no timeout: if the provider
// never returns, the result never settles.
func (r *Requester) GetDisplayMedia(constraints *Constraints) *Pending {
	p := newPending()

	if err := r.validate(constraints); err != nil {
		p.settle(nil, err)
		return p
	}

	go func() {
		p.settle(r.acquire())
	}()
	return p
}

// Request is GetDisplayMedia followed by Wait.
func (r *Requester) Request(constraints *Constraints) (*mediastream.MediaStream, error) {
	return r.GetDisplayMedia(constraints).Wait()
}

func (r *Requester) validate(constraints *Constraints) error {
	if platform := r.platform.Platform(); platform != r.supported {
		return &TypeError{Reason: fmt.Sprintf("platform %q is not supported", platform)}
	}
	if constraints == nil {
		return &TypeError{Reason: "constraints are required"}
	}
	if !constraints.Video {
		return &TypeError{Reason: "constraints.video is required"}
	}
	return nil
}

// acquire produces the single outcome of a request.
func (r *Requester) acquire() (*mediastream.MediaStream, error) {
	descriptor, err := r.requestCapture()
	if err != nil {
		return nil, err
	}
	return r.assemble(descriptor)
}

// requestCapture returns provider failures normalized. A panic in the
// provider comes back raw.
func (r *Requester) requestCapture() (descriptor *CaptureDescriptor, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			descriptor, err = nil, recoveredError(rec)
		}
	}()

	descriptor, err = r.provider.RequestCapture()
	if err != nil {
		if normalized := r.normalize(err); normalized != nil {
			return nil, normalized
		}
		return nil, mediastream.NewError(err)
	}
	return descriptor, nil
}

// assemble turns a descriptor into a stream. Any failure, including a panic
// in the constructor, is logged once and returned unwrapped, and the
// provider's hold on the descriptor is released.
func (r *Requester) assemble(descriptor *CaptureDescriptor) (stream *mediastream.MediaStream, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			stream, err = nil, recoveredError(rec)
		}
		if err != nil {
			r.logf("getDisplayMedia %v", err)
			r.release(descriptor)
		}
	}()

	if descriptor == nil {
		return nil, ErrNoDescriptor
	}

	stream, err = r.construct(mediastream.StreamInfo{
		StreamID:  descriptor.StreamID,
		StreamTag: descriptor.StreamID,
		Tracks:    []mediastream.TrackInfo{descriptor.Track},
	})
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, ErrNoStream
	}
	return stream, nil
}

func (r *Requester) release(descriptor *CaptureDescriptor) {
	releaser, ok := r.provider.(StreamReleaser)
	if !ok || descriptor == nil {
		return
	}
	defer func() { _ = recover() }()
	_ = releaser.Release(descriptor.StreamID)
}

func recoveredError(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return &PanicError{Value: rec}
}
