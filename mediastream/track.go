package mediastream

import (
	"fmt"

	"github.com/pion/webrtc/v3"
)

const (
	KindVideo = "video"
	KindAudio = "audio"
)

const (
	ReadyStateLive  = "live"
	ReadyStateEnded = "ended"
)

// TrackSettings mirrors the settings a capture provider reports for a track.
type TrackSettings struct {
	Width     uint32
	Height    uint32
	FrameRate uint32
	DeviceID  string
}

// TrackInfo is the track descriptor produced by a capture provider.
type TrackInfo struct {
	ID         string
	Kind       string
	Label      string
	Enabled    bool
	Remote     bool
	ReadyState string
	Settings   TrackSettings
}

// Track is a single media track of a MediaStream.
type Track struct {
	info  TrackInfo
	local *webrtc.TrackLocalStaticSample
}

func newTrack(info TrackInfo, streamID string) (*Track, error) {
	if info.ID == "" {
		return nil, fmt.Errorf("%w: empty track id", ErrInvalidTrack)
	}

	var capability webrtc.RTPCodecCapability
	switch webrtc.NewRTPCodecType(info.Kind) {
	case webrtc.RTPCodecTypeVideo:
		info.Kind = KindVideo
		capability = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}
	case webrtc.RTPCodecTypeAudio:
		info.Kind = KindAudio
		capability = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2}
	default:
		return nil, fmt.Errorf("%w: track %s has unknown kind %q", ErrInvalidTrack, info.ID, info.Kind)
	}

	local, err := webrtc.NewTrackLocalStaticSample(capability, info.ID, streamID)
	if err != nil {
		return nil, fmt.Errorf("track %s: %w", info.ID, err)
	}

	if info.ReadyState == "" {
		info.ReadyState = ReadyStateLive
	}
	return &Track{info: info, local: local}, nil
}

func (t *Track) ID() string              { return t.info.ID }
func (t *Track) Kind() string            { return t.info.Kind }
func (t *Track) Label() string           { return t.info.Label }
func (t *Track) Enabled() bool           { return t.info.Enabled }
func (t *Track) Remote() bool            { return t.info.Remote }
func (t *Track) ReadyState() string      { return t.info.ReadyState }
func (t *Track) Settings() TrackSettings { return t.info.Settings }

// Info returns the descriptor the track was built from.
func (t *Track) Info() TrackInfo { return t.info }

// Local returns the pion track backing this track, ready to be passed to
// (*webrtc.PeerConnection).AddTrack.
func (t *Track) Local() *webrtc.TrackLocalStaticSample { return t.local }
