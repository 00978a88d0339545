package cryptobox

import (
	"errors"
	"fmt"
)

// Kind identifies which category of failure an error belongs to, so
// callers can branch on outcome without string-matching messages.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindDirNotFound
	KindConflict
	KindNameTooLong
	KindExtTooLong
	KindInvalidConfig
	KindInvalidTag
	KindCorrupt
	KindCorruptManifest
	KindInsufficientSpace
	KindPathTraversal
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindDirNotFound:
		return "dir_not_found"
	case KindConflict:
		return "conflict"
	case KindNameTooLong:
		return "name_too_long"
	case KindExtTooLong:
		return "ext_too_long"
	case KindInvalidConfig:
		return "invalid_config"
	case KindInvalidTag:
		return "invalid_tag"
	case KindCorrupt:
		return "corrupt"
	case KindCorruptManifest:
		return "corrupt_manifest"
	case KindInsufficientSpace:
		return "insufficient_space"
	case KindPathTraversal:
		return "path_traversal"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the shape every public operation in this package returns on
// failure. Path and Message are empty when not applicable.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "EncryptFile"
	Path    string // file/path involved, if any
	Message string
	Err     error // underlying error, if any
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Message != "":
		return fmt.Sprintf("%s %s: %s (%s)", e.Op, e.Path, e.Message, e.Kind)
	case e.Path != "":
		return fmt.Sprintf("%s %s (%s)", e.Op, e.Path, e.Kind)
	case e.Message != "":
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Kind)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, someKindSentinel) match on Kind alone,
// ignoring Op/Path/Message/Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, op, path string, err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{Kind: kind, Op: op, Path: path, Message: msg, Err: err}
}

func wrapErr(kind Kind, op, path, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Message: message, Err: err}
}

// KindOf extracts the Kind of err, walking the Unwrap chain. Returns
// KindUnknown if err is nil or isn't one of this package's errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Sentinel errors usable with errors.Is when no extra context is
// needed; Error.Is compares by Kind, so these match any *Error with
// the same Kind regardless of Op/Path/Message.
var (
	ErrInvalidTag    error = &Error{Kind: KindInvalidTag, Op: "aead"}
	ErrNotFound      error = &Error{Kind: KindNotFound, Op: "open"}
	ErrDirNotFound   error = &Error{Kind: KindDirNotFound, Op: "resolve"}
	ErrConflict      error = &Error{Kind: KindConflict, Op: "allocate"}
	ErrCorrupt       error = &Error{Kind: KindCorrupt, Op: "decode"}
	ErrPathTraversal error = &Error{Kind: KindPathTraversal, Op: "restore"}
)
