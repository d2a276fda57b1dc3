package apierr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfig          Kind = "config"
	KindTransport       Kind = "transport"
	KindFormat          Kind = "format"
	KindPersistence     Kind = "persistence"
	KindInvalidArgument Kind = "invalid_argument"
	KindUnknown         Kind = "unknown"
)

type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("%s error", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func Config(code, format string, args ...any) *Error {
	return New(KindConfig, code, fmt.Errorf(format, args...))
}

func Transport(code string, err error) *Error {
	return New(KindTransport, code, err)
}

func Format(code, format string, args ...any) *Error {
	return New(KindFormat, code, fmt.Errorf(format, args...))
}

func Persistence(code string, err error) *Error {
	return New(KindPersistence, code, err)
}

func InvalidArgument(code, format string, args ...any) *Error {
	return New(KindInvalidArgument, code, fmt.Errorf(format, args...))
}

// KindOf returns the kind of the outermost *Error in err's chain, or a kind
// reported by any error implementing ErrorKind() Kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != "" {
		return e.Kind
	}
	var k interface{ ErrorKind() Kind }
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	switch KindOf(err) {
	case "":
		return 0
	case KindConfig:
		return 2
	default:
		return 1
	}
}
