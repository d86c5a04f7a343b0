package xdgportal

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"

	"go2tv.app/displaymedia/internal/apis"
	"go2tv.app/displaymedia/internal/convert"
	"go2tv.app/displaymedia/internal/request"
	"go2tv.app/displaymedia/internal/session"
)

const (
	interfaceName      = apis.CallBaseName + ".ScreenCast"
	createSessionName  = interfaceName + ".CreateSession"
	selectSourcesName  = interfaceName + ".SelectSources"
	startName          = interfaceName + ".Start"
	openPipeWireRemote = interfaceName + ".OpenPipeWireRemote"
)

const (
	SourceTypeMonitor uint32 = 1
	SourceTypeWindow  uint32 = 2
	SourceTypeVirtual uint32 = 4
)

const (
	CursorModeHidden   uint32 = 1
	CursorModeEmbedded uint32 = 2
	CursorModeMetadata uint32 = 4
)

const (
	PersistModeNone       uint32 = 0
	PersistModeRunning    uint32 = 1
	PersistModePersistent uint32 = 2
)

var (
	ErrCancelled = errors.New("portal request was cancelled")
	ErrEnded     = errors.New("portal request ended")
)

func getUint32Property(property string) (uint32, error) {
	value, err := apis.GetProperty(interfaceName, property)
	if err != nil {
		return 0, err
	}

	result, ok := value.(uint32)
	if !ok {
		return 0, fmt.Errorf("property %s returned unexpected type %T", property, value)
	}
	return result, nil
}

func GetAvailableSourceTypes() (uint32, error) {
	return getUint32Property("AvailableSourceTypes")
}

func GetAvailableCursorModes() (uint32, error) {
	return getUint32Property("AvailableCursorModes")
}

func GetVersion() (uint32, error) {
	return getUint32Property("version")
}

type Stream struct {
	NodeID     uint32
	Position   [2]int32
	Size       [2]int32
	SourceType uint32
	MappingID  string
	ID         string
}

type Session struct {
	Path dbus.ObjectPath
}

type Options struct {
	SessionHandleToken string
}

type SelectSourcesOptions struct {
	Types        uint32
	Multiple     bool
	CursorMode   uint32
	RestoreToken string
	PersistMode  uint32
}

// StatusError maps a Response status to ErrCancelled or ErrEnded.
func StatusError(status request.ResponseStatus) error {
	switch status {
	case request.Success:
		return nil
	case request.Cancelled:
		return ErrCancelled
	default:
		return ErrEnded
	}
}

// do performs one request-based portal call. data is sent as the trailing
// options vardict with a fresh handle_token.
func do(callName string, data convert.Vardict, args ...any) (map[string]dbus.Variant, error) {
	pending, err := request.Prepare()
	if err != nil {
		return nil, err
	}
	data["handle_token"] = convert.FromString(pending.Token)

	result, err := apis.Call(callName, append(args, map[string]dbus.Variant(data))...)
	if err != nil {
		_ = pending.Close()
		return nil, err
	}

	requestPath, ok := result.(dbus.ObjectPath)
	if !ok {
		_ = pending.Close()
		return nil, fmt.Errorf("%s returned unexpected type %T", callName, result)
	}

	status, results, err := pending.Wait(requestPath)
	if err != nil {
		return nil, err
	}
	if err := StatusError(status); err != nil {
		return nil, fmt.Errorf("%s: %w", callName, err)
	}
	return results, nil
}

func CreateSession(options *Options) (*Session, error) {
	data := convert.Vardict{
		"session_handle_token": session.GenerateToken(),
	}
	if options != nil {
		data.SetString("session_handle_token", options.SessionHandleToken)
	}

	results, err := do(createSessionName, data)
	if err != nil {
		return nil, err
	}

	sessionHandle, ok := results["session_handle"]
	if !ok {
		return nil, fmt.Errorf("CreateSession response missing session_handle")
	}
	switch v := sessionHandle.Value().(type) {
	case string:
		return &Session{Path: dbus.ObjectPath(v)}, nil
	case dbus.ObjectPath:
		return &Session{Path: v}, nil
	default:
		return nil, fmt.Errorf("CreateSession session_handle has unexpected type %T", v)
	}
}

func (s *Session) SelectSources(options *SelectSourcesOptions) error {
	data := convert.Vardict{}
	if options != nil {
		data.SetUint32("types", options.Types)
		data.SetBool("multiple", options.Multiple)
		data.SetUint32("cursor_mode", options.CursorMode)
		data.SetString("restore_token", options.RestoreToken)
		data.SetUint32("persist_mode", options.PersistMode)
	}

	_, err := do(selectSourcesName, data, s.Path)
	return err
}

// Start shows the source chooser and returns the selected streams along with
// the restore token, if the portal handed one out.
func (s *Session) Start(parentWindow string) ([]Stream, string, error) {
	results, err := do(startName, convert.Vardict{}, s.Path, parentWindow)
	if err != nil {
		return nil, "", err
	}

	restoreToken := ""
	if v, ok := results["restore_token"]; ok {
		restoreToken, _ = v.Value().(string)
	}
	return ParseStreams(results), restoreToken, nil
}

// ParseStreams decodes the a(ua{sv}) "streams" entry of a Start response.
// Malformed entries are skipped.
func ParseStreams(results map[string]dbus.Variant) []Stream {
	streamVariant, ok := results["streams"]
	if !ok {
		return nil
	}

	var rawStreams [][]any
	if rs, ok := streamVariant.Value().([][]any); ok {
		rawStreams = rs
	} else if rs, ok := streamVariant.Value().([]any); ok {
		rawStreams = make([][]any, len(rs))
		for i, r := range rs {
			if s, ok := r.([]any); ok {
				rawStreams[i] = s
			}
		}
	} else {
		return nil
	}

	streams := []Stream{}
	for _, streamSlice := range rawStreams {
		if len(streamSlice) < 2 {
			continue
		}

		stream := Stream{}

		nodeID, ok := streamSlice[0].(uint32)
		if ok {
			stream.NodeID = nodeID
		}

		props, ok := streamSlice[1].(map[string]dbus.Variant)
		if ok {
			if pos, ok := props["position"]; ok {
				if position, ok := parseInt32Pair(pos.Value()); ok {
					stream.Position = position
				}
			}
			if size, ok := props["size"]; ok {
				if parsedSize, ok := parseInt32Pair(size.Value()); ok {
					stream.Size = parsedSize
				}
			}
			if sourceType, ok := props["source_type"]; ok {
				if parsedType, ok := sourceType.Value().(uint32); ok {
					stream.SourceType = parsedType
				}
			}
			if mappingID, ok := props["mapping_id"]; ok {
				if parsedID, ok := mappingID.Value().(string); ok {
					stream.MappingID = parsedID
				}
			}
			if id, ok := props["id"]; ok {
				if parsedID, ok := id.Value().(string); ok {
					stream.ID = parsedID
				}
			}
		}

		streams = append(streams, stream)
	}

	return streams
}

// OpenPipeWireRemote returns a file descriptor for the PipeWire remote
// serving the session's streams. The caller owns the descriptor.
func (s *Session) OpenPipeWireRemote() (int, error) {
	data := map[string]dbus.Variant{}

	conn, err := dbus.SessionBus()
	if err != nil {
		return -1, err
	}

	obj := conn.Object(apis.ObjectName, apis.ObjectPath)
	call := obj.Call(openPipeWireRemote, 0, s.Path, data)
	if call.Err != nil {
		return -1, call.Err
	}

	var fd dbus.UnixFD
	if err := call.Store(&fd); err != nil {
		return -1, err
	}
	return int(fd), nil
}

func parseInt32Pair(value any) ([2]int32, bool) {
	values, ok := value.([]any)
	if !ok || len(values) < 2 {
		return [2]int32{}, false
	}

	left, ok := values[0].(int32)
	if !ok {
		return [2]int32{}, false
	}
	right, ok := values[1].(int32)
	if !ok {
		return [2]int32{}, false
	}

	return [2]int32{left, right}, true
}

func (s *Session) Close() error {
	return session.Close(s.Path)
}
