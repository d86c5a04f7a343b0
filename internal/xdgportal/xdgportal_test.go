package xdgportal

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"

	"go2tv.app/displaymedia/internal/request"
)

func TestParseStreams(t *testing.T) {
	results := map[string]dbus.Variant{
		"streams": dbus.MakeVariant([]any{
			[]any{
				uint32(57),
				map[string]dbus.Variant{
					"position":    dbus.MakeVariant([]any{int32(0), int32(0)}),
					"size":        dbus.MakeVariant([]any{int32(2560), int32(1440)}),
					"source_type": dbus.MakeVariant(SourceTypeMonitor),
					"id":          dbus.MakeVariant("monitor-0"),
				},
			},
			[]any{uint32(58)},
			[]any{
				uint32(61),
				map[string]dbus.Variant{
					"size":        dbus.MakeVariant([]any{int32(800)}),
					"source_type": dbus.MakeVariant(SourceTypeWindow),
					"mapping_id":  dbus.MakeVariant("win-1"),
				},
			},
		}),
	}

	streams := ParseStreams(results)
	if len(streams) != 2 {
		t.Fatalf("got %d streams, want 2", len(streams))
	}

	first := streams[0]
	if first.NodeID != 57 || first.Size != [2]int32{2560, 1440} || first.SourceType != SourceTypeMonitor || first.ID != "monitor-0" {
		t.Errorf("first stream = %+v", first)
	}

	second := streams[1]
	if second.NodeID != 61 || second.MappingID != "win-1" {
		t.Errorf("second stream = %+v", second)
	}
	if second.Size != [2]int32{} {
		t.Errorf("malformed size should be ignored, got %v", second.Size)
	}
}

func TestParseStreamsMissingOrMalformed(t *testing.T) {
	if got := ParseStreams(map[string]dbus.Variant{}); got != nil {
		t.Errorf("missing streams: got %v", got)
	}
	if got := ParseStreams(map[string]dbus.Variant{"streams": dbus.MakeVariant("nope")}); got != nil {
		t.Errorf("malformed streams: got %v", got)
	}
}

func TestStatusError(t *testing.T) {
	if err := StatusError(request.Success); err != nil {
		t.Errorf("Success: %v", err)
	}
	if err := StatusError(request.Cancelled); !errors.Is(err, ErrCancelled) {
		t.Errorf("Cancelled: %v", err)
	}
	if err := StatusError(request.Ended); !errors.Is(err, ErrEnded) {
		t.Errorf("Ended: %v", err)
	}
	if err := StatusError(99); !errors.Is(err, ErrEnded) {
		t.Errorf("unknown status: %v", err)
	}
}
