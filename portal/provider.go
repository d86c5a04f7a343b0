// Package portal implements a screen-capture provider on top of the
// xdg-desktop-portal ScreenCast interface.
package portal

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"go2tv.app/displaymedia/displaymedia"
	"go2tv.app/displaymedia/internal/xdgportal"
	"go2tv.app/displaymedia/mediastream"
)

const defaultFrameRate = 60

const (
	SourceTypeMonitor = xdgportal.SourceTypeMonitor
	SourceTypeWindow  = xdgportal.SourceTypeWindow
	SourceTypeVirtual = xdgportal.SourceTypeVirtual
)

const (
	CursorModeHidden   = xdgportal.CursorModeHidden
	CursorModeEmbedded = xdgportal.CursorModeEmbedded
	CursorModeMetadata = xdgportal.CursorModeMetadata
)

const (
	PersistModeNone       = xdgportal.PersistModeNone
	PersistModeRunning    = xdgportal.PersistModeRunning
	PersistModePersistent = xdgportal.PersistModePersistent
)

var (
	ErrInvalidOptions = errors.New("invalid portal capture options")
	ErrClosed         = errors.New("portal provider is closed")
	ErrUnknownStream  = errors.New("unknown capture stream")
)

// Options configures the portal requests. A nil *Options selects monitors
// and windows with an embedded cursor.
type Options struct {
	Types        uint32
	CursorMode   uint32
	Multiple     bool
	PersistMode  uint32
	RestoreToken string
	ParentWindow string

	// StreamIndex selects the stream from the chooser result. Default is 0.
	StreamIndex int
	// FrameRate is reported in the track settings. Default is 60.
	FrameRate uint32
}

type screenCaster interface {
	CreateSession(options *xdgportal.Options) (castSession, error)
}

type castSession interface {
	SelectSources(options *xdgportal.SelectSourcesOptions) error
	Start(parentWindow string) ([]xdgportal.Stream, string, error)
	OpenPipeWireRemote() (int, error)
	Close() error
}

type dbusCaster struct{}

func (dbusCaster) CreateSession(options *xdgportal.Options) (castSession, error) {
	sess, err := xdgportal.CreateSession(options)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Provider requests screen captures through the portal. Each successful
// request keeps its portal session open until Release or Close.
type Provider struct {
	opts   Options
	caster screenCaster
	newID  func() string

	mu           sync.Mutex
	sessions     map[string]castSession
	restoreToken string
	closed       bool
}

var _ displaymedia.CaptureProvider = (*Provider)(nil)

func NewProvider(options *Options) (*Provider, error) {
	opts, err := normalizeOptions(options)
	if err != nil {
		return nil, err
	}
	return &Provider{
		opts:         opts,
		caster:       dbusCaster{},
		newID:        uuid.NewString,
		sessions:     make(map[string]castSession),
		restoreToken: opts.RestoreToken,
	}, nil
}

func normalizeOptions(options *Options) (Options, error) {
	opts := Options{}
	if options != nil {
		opts = *options
	}
	if opts.StreamIndex < 0 {
		return Options{}, fmt.Errorf("%w: StreamIndex must be >= 0", ErrInvalidOptions)
	}
	if opts.Types == 0 {
		opts.Types = SourceTypeMonitor | SourceTypeWindow
	}
	if opts.Types&^(SourceTypeMonitor|SourceTypeWindow|SourceTypeVirtual) != 0 {
		return Options{}, fmt.Errorf("%w: unknown source types %#x", ErrInvalidOptions, opts.Types)
	}
	if opts.CursorMode == 0 {
		opts.CursorMode = CursorModeEmbedded
	}
	if opts.PersistMode > PersistModePersistent {
		return Options{}, fmt.Errorf("%w: unknown persist mode %d", ErrInvalidOptions, opts.PersistMode)
	}
	if opts.FrameRate == 0 {
		opts.FrameRate = defaultFrameRate
	}
	return opts, nil
}

// RequestCapture asks the user to pick a source and returns a descriptor for
// the selected stream. Errors carry the mediastream sentinels so that
// mediastream.NewError names them.
func (p *Provider) RequestCapture() (*displaymedia.CaptureDescriptor, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	restoreToken := p.restoreToken
	p.mu.Unlock()

	portalDebugf("step=create_session")
	sess, err := p.caster.CreateSession(nil)
	if err != nil {
		return nil, providerError(err)
	}

	// Close session on setup failure.
	cleanupSession := true
	defer func() {
		if cleanupSession {
			_ = sess.Close()
		}
	}()

	portalDebugf("step=select_sources types=%#x cursor=%d multiple=%t", p.opts.Types, p.opts.CursorMode, p.opts.Multiple)
	err = sess.SelectSources(&xdgportal.SelectSourcesOptions{
		Types:        p.opts.Types,
		CursorMode:   p.opts.CursorMode,
		Multiple:     p.opts.Multiple,
		PersistMode:  p.opts.PersistMode,
		RestoreToken: restoreToken,
	})
	if err != nil {
		return nil, providerError(err)
	}

	portalDebugf("step=start")
	streams, newToken, err := sess.Start(p.opts.ParentWindow)
	if err != nil {
		return nil, providerError(err)
	}
	if len(streams) == 0 {
		return nil, fmt.Errorf("%w: portal returned no streams", mediastream.ErrNotFound)
	}
	if p.opts.StreamIndex >= len(streams) {
		return nil, &mediastream.ConstraintError{
			Constraint: "streamIndex",
			Message:    fmt.Sprintf("index %d out of range (streams=%d)", p.opts.StreamIndex, len(streams)),
		}
	}

	selected := streams[p.opts.StreamIndex]
	if selected.Size[0] <= 0 || selected.Size[1] <= 0 {
		return nil, fmt.Errorf("%w: invalid stream size %dx%d", mediastream.ErrNotReadable, selected.Size[0], selected.Size[1])
	}

	streamID := p.newID()
	descriptor := &displaymedia.CaptureDescriptor{
		StreamID: streamID,
		Track:    trackInfo(p.newID(), selected, p.opts.FrameRate),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	p.sessions[streamID] = sess
	if newToken != "" {
		p.restoreToken = newToken
	}
	cleanupSession = false

	portalDebugf("step=started stream=%s node=%d size=%dx%d", streamID, selected.NodeID, selected.Size[0], selected.Size[1])
	return descriptor, nil
}

func trackInfo(id string, s xdgportal.Stream, frameRate uint32) mediastream.TrackInfo {
	node := strconv.FormatUint(uint64(s.NodeID), 10)
	label := "screen:" + node
	if s.SourceType == SourceTypeWindow {
		label = "window:" + node
	}
	return mediastream.TrackInfo{
		ID:         id,
		Kind:       mediastream.KindVideo,
		Label:      label,
		Enabled:    true,
		ReadyState: mediastream.ReadyStateLive,
		Settings: mediastream.TrackSettings{
			Width:     uint32(s.Size[0]),
			Height:    uint32(s.Size[1]),
			FrameRate: frameRate,
			DeviceID:  node,
		},
	}
}

func providerError(err error) error {
	if errors.Is(err, xdgportal.ErrCancelled) {
		return fmt.Errorf("%w: %w", mediastream.ErrPermissionDenied, err)
	}
	return err
}

// PipeWireRemote opens the PipeWire remote for the session behind streamID.
// The caller owns the returned descriptor.
func (p *Provider) PipeWireRemote(streamID string) (int, error) {
	p.mu.Lock()
	sess, ok := p.sessions[streamID]
	p.mu.Unlock()
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrUnknownStream, streamID)
	}
	return sess.OpenPipeWireRemote()
}

// RestoreToken returns the latest token handed out by the portal, for use
// as Options.RestoreToken by a later provider.
func (p *Provider) RestoreToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.restoreToken
}

// Release closes the portal session behind streamID.
func (p *Provider) Release(streamID string) error {
	p.mu.Lock()
	sess, ok := p.sessions[streamID]
	delete(p.sessions, streamID)
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStream, streamID)
	}
	return sess.Close()
}

// Close releases every open session. Later requests fail with ErrClosed.
func (p *Provider) Close() error {
	p.mu.Lock()
	sessions := p.sessions
	p.sessions = make(map[string]castSession)
	p.closed = true
	p.mu.Unlock()

	var errs []error
	for id, sess := range sessions {
		if err := sess.Close(); err != nil {
			errs = append(errs, fmt.Errorf("stream %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func AvailableSourceTypes() (uint32, error) { return xdgportal.GetAvailableSourceTypes() }
func AvailableCursorModes() (uint32, error) { return xdgportal.GetAvailableCursorModes() }
func Version() (uint32, error)              { return xdgportal.GetVersion() }
