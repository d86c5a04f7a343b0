package mediastream

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStreamID = errors.New("invalid media stream id")
	ErrInvalidTrack    = errors.New("invalid media stream track")
)

// StreamInfo is the record a MediaStream is built from. StreamTag is kept
// for callers that address streams by tag rather than id.
type StreamInfo struct {
	StreamID  string
	StreamTag string
	Tracks    []TrackInfo
}

// MediaStream is an acquired media stream and its ordered tracks.
type MediaStream struct {
	id     string
	tag    string
	tracks []*Track
}

// New builds a MediaStream. Tracks keep the order of info.Tracks.
func New(info StreamInfo) (*MediaStream, error) {
	if info.StreamID == "" {
		return nil, ErrInvalidStreamID
	}

	tag := info.StreamTag
	if tag == "" {
		tag = info.StreamID
	}

	seen := make(map[string]struct{}, len(info.Tracks))
	tracks := make([]*Track, 0, len(info.Tracks))
	for _, ti := range info.Tracks {
		if _, dup := seen[ti.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate track id %s", ErrInvalidTrack, ti.ID)
		}
		track, err := newTrack(ti, info.StreamID)
		if err != nil {
			return nil, err
		}
		seen[ti.ID] = struct{}{}
		tracks = append(tracks, track)
	}

	return &MediaStream{id: info.StreamID, tag: tag, tracks: tracks}, nil
}

func (s *MediaStream) ID() string  { return s.id }
func (s *MediaStream) Tag() string { return s.tag }

// Tracks returns a copy of the stream's tracks.
func (s *MediaStream) Tracks() []*Track {
	out := make([]*Track, len(s.tracks))
	copy(out, s.tracks)
	return out
}

func (s *MediaStream) VideoTracks() []*Track { return s.tracksOfKind(KindVideo) }
func (s *MediaStream) AudioTracks() []*Track { return s.tracksOfKind(KindAudio) }

func (s *MediaStream) tracksOfKind(kind string) []*Track {
	var out []*Track
	for _, t := range s.tracks {
		if t.Kind() == kind {
			out = append(out, t)
		}
	}
	return out
}

// TrackByID returns nil when the stream has no track with that id.
func (s *MediaStream) TrackByID(id string) *Track {
	for _, t := range s.tracks {
		if t.ID() == id {
			return t
		}
	}
	return nil
}

// Active reports whether any track is still live.
func (s *MediaStream) Active() bool {
	for _, t := range s.tracks {
		if t.ReadyState() == ReadyStateLive {
			return true
		}
	}
	return false
}
