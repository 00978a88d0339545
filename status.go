package cryptobox

import "github.com/google/uuid"

// EventKind distinguishes the phases of a long-running batch
// operation (manifest build/restore, directory shredding) that the
// Python original reported through a single status_callback(msg,
// is_error) string callback. This package replaces that with a typed
// event so callers can filter and format without parsing text.
type EventKind uint8

const (
	EventStarted EventKind = iota
	EventFileDone
	EventWarn
	EventFatal
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventFileDone:
		return "file_done"
	case EventWarn:
		return "warn"
	case EventFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Event is one progress notification from a batch operation. RunID
// correlates every event emitted by a single call to BuildManifest,
// RestoreFromManifest, ShredDirectory, or ShredFile. The per-pass
// events of each ShredFile call that ShredDirectory makes carry that
// ShredFile call's own RunID, not the directory run's.
type Event struct {
	RunID   uuid.UUID
	Kind    EventKind
	Path    string
	Message string
	Err     error
}

// Reporter receives Events as a batch operation progresses. A nil
// Reporter is valid everywhere one is accepted: operations simply
// skip emitting events. This mirrors the original's optional
// status_callback=None default.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a plain function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) {
	if f != nil {
		f(e)
	}
}

// newRunID allocates a correlation id for one batch operation.
func newRunID() uuid.UUID {
	return uuid.New()
}

func report(r Reporter, runID uuid.UUID, kind EventKind, path, message string, err error) {
	if r == nil {
		return
	}
	r.Report(Event{RunID: runID, Kind: kind, Path: path, Message: message, Err: err})
}
