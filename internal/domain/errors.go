package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNoDataAvailable    = errors.New("no data available: every venue source failed")
	ErrInvalidPreferences = errors.New("invalid preferences")
)

type SourceErrorKind string

const (
	KindTimeout         SourceErrorKind = "timeout"
	KindUnreachable     SourceErrorKind = "unreachable"
	KindInvalidResponse SourceErrorKind = "invalid_response"
	KindRateLimited     SourceErrorKind = "rate_limited"
)

// SourceError is the only error a VenueSource returns.
type SourceError struct {
	Source  SourceKind
	Kind    SourceErrorKind
	Message string
	Err     error
}

func (e *SourceError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Kind, msg)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Is lets callers match on kind: errors.Is(err, &SourceError{Kind: KindTimeout}).
func (e *SourceError) Is(target error) bool {
	t, ok := target.(*SourceError)
	if !ok {
		return false
	}
	return (t.Kind == "" || t.Kind == e.Kind) && (t.Source == "" || t.Source == e.Source)
}

func NewSourceError(src SourceKind, kind SourceErrorKind, err error) *SourceError {
	se := &SourceError{Source: src, Kind: kind, Err: err}
	if err != nil {
		se.Message = err.Error()
	}
	return se
}

// AsSourceError converts any failure into a SourceError tagged with src.
// Context deadlines become timeouts; anything unclassified is unreachable.
func AsSourceError(src SourceKind, err error) *SourceError {
	if err == nil {
		return nil
	}
	var se *SourceError
	if errors.As(err, &se) {
		if se.Source == "" {
			se.Source = src
		}
		return se
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewSourceError(src, KindTimeout, err)
	}
	return NewSourceError(src, KindUnreachable, err)
}

type ValidationError struct {
	RecordID string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid venue %q: %s: %s", e.RecordID, e.Field, e.Reason)
}
