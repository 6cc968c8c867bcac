package storage

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures that cross the package boundary.
type ErrorKind int

const (
	KindStoreNotFound ErrorKind = iota + 1
	KindParse
	KindSerialization
	KindIO
	KindQuery
	KindSchema
	KindInvalidArgument
	KindNotFound
)

// Sentinels for errors.Is checks against an *Error of the matching kind.
var (
	ErrStoreNotFound   = errors.New("store not found")
	ErrParse           = errors.New("parse failure")
	ErrSerialization   = errors.New("serialization failure")
	ErrIO              = errors.New("io failure")
	ErrQuery           = errors.New("query failure")
	ErrSchemaMismatch  = errors.New("schema mismatch")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindStoreNotFound:
		return ErrStoreNotFound
	case KindParse:
		return ErrParse
	case KindSerialization:
		return ErrSerialization
	case KindIO:
		return ErrIO
	case KindQuery:
		return ErrQuery
	case KindSchema:
		return ErrSchemaMismatch
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindNotFound:
		return ErrNotFound
	}
	return nil
}

func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the single error type returned by the query and export layers.
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinel, so errors.Is(err, ErrStoreNotFound) works
// on any wrapped *Error of that kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// NewError wraps err with a kind and operation name.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ParseError reports a timestamp that matched none of the known layouts.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse timestamp: %q", e.Raw)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }
