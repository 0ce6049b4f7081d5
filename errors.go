package questsh

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed operation. The zero value means no error.
type ErrorKind string

const (
	KindNone              ErrorKind = ""
	KindNotFound          ErrorKind = "NotFound"
	KindAlreadyExists     ErrorKind = "AlreadyExists"
	KindNotADirectory     ErrorKind = "NotADirectory"
	KindIsADirectory      ErrorKind = "IsADirectory"
	KindDirectoryNotEmpty ErrorKind = "DirectoryNotEmpty"
	KindPermissionDenied  ErrorKind = "PermissionDenied"
	KindInvalidArguments  ErrorKind = "InvalidArguments"
	KindParseError        ErrorKind = "ParseError"
	KindCommandNotFound   ErrorKind = "CommandNotFound"
)

var (
	ErrNotFound          = errors.New("no such file or directory")
	ErrAlreadyExists     = errors.New("file exists")
	ErrNotADirectory     = errors.New("not a directory")
	ErrIsADirectory      = errors.New("is a directory")
	ErrDirectoryNotEmpty = errors.New("directory not empty")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidArguments  = errors.New("invalid arguments")
	ErrParse             = errors.New("syntax error")
	ErrCommandNotFound   = errors.New("command not found")
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrNotFound, KindNotFound},
	{ErrAlreadyExists, KindAlreadyExists},
	{ErrNotADirectory, KindNotADirectory},
	{ErrIsADirectory, KindIsADirectory},
	{ErrDirectoryNotEmpty, KindDirectoryNotEmpty},
	{ErrPermissionDenied, KindPermissionDenied},
	{ErrInvalidArguments, KindInvalidArguments},
	{ErrParse, KindParseError},
	{ErrCommandNotFound, KindCommandNotFound},
}

// KindOf returns the kind of the first sentinel found in err's chain.
// Errors that carry no known sentinel are reported as InvalidArguments so
// that every failure surfaces with some kind.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInvalidArguments
}

// PathError records a failed filesystem operation on a canonical path.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Op == "" {
		return e.Path + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error { return e.Err }

// NewPathError is shorthand for a PathError without an operation prefix.
func NewPathError(path string, err error) *PathError {
	return &PathError{Path: path, Err: err}
}

// UsageError reports a command invoked with bad arguments.
type UsageError struct {
	Cmd string
	Msg string
}

func (e *UsageError) Error() string {
	if e.Cmd == "" {
		return e.Msg
	}
	return e.Cmd + ": " + e.Msg
}

func (e *UsageError) Unwrap() error { return ErrInvalidArguments }

// Usagef builds a UsageError for cmd.
func Usagef(cmd, format string, args ...any) error {
	return &UsageError{Cmd: cmd, Msg: fmt.Sprintf(format, args...)}
}

// ParseError reports a malformed input line. Pos is the character (rune)
// offset of the offending token, or -1 when the error concerns the whole line.
type ParseError struct {
	Msg string
	Pos int
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return "syntax error: " + e.Msg
	}
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error { return ErrParse }
