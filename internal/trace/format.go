package trace

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick by output path
	FormatText                 // zerolog console writer
	FormatNDJSON               // zerolog JSON lines
)

// ParseFormat converts a string to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

const timeLayout = "15:04:05.000000"

// newLogger builds the zerolog logger events are rendered through.
func newLogger(w io.Writer, format Format) zerolog.Logger {
	if format == FormatNDJSON {
		return zerolog.New(w)
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:           w,
		NoColor:       true,
		TimeFormat:    timeLayout,
		PartsOrder:    []string{zerolog.TimestampFieldName, "kind", zerolog.MessageFieldName},
		FieldsExclude: []string{"kind"},
	})
}

func logEvent(logger zerolog.Logger, ev *Event) {
	e := logger.Log().
		Time(zerolog.TimestampFieldName, ev.Time).
		Uint64("seq", ev.Seq).
		Str("kind", ev.Kind.String()).
		Str("scope", ev.Scope.String()).
		Uint64("span_id", ev.SpanID)
	if ev.ParentID != 0 {
		e = e.Uint64("parent_id", ev.ParentID)
	}
	if ev.GID != 0 {
		e = e.Uint64("gid", ev.GID)
	}
	if ev.Detail != "" {
		e = e.Str("detail", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		extra := zerolog.Dict()
		for _, k := range keys {
			extra = extra.Str(k, ev.Extra[k])
		}
		e = e.Dict("extra", extra)
	}
	e.Msg(ev.Name)
}
