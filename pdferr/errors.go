// Package pdferr defines the error kinds surfaced by document loading and
// page analysis.
//
// Document-level kinds (CorruptDocument, Encrypted, PageLimitExceeded) abort
// a whole document. Page-level kinds (PageDecodeError, IncompletePageBundle)
// fail one page and leave its siblings alone. Match them with errors.Is
// against the Err* sentinels or read the kind with KindOf.
package pdferr

import (
	"errors"
	"fmt"
)

// Kind enumerates error categories
type Kind int

const (
	Unknown Kind = iota
	CorruptDocument
	Encrypted
	PageLimitExceeded
	PageDecodeError
	IncompletePageBundle
)

func (k Kind) String() string {
	switch k {
	case CorruptDocument:
		return "CorruptDocument"
	case Encrypted:
		return "Encrypted"
	case PageLimitExceeded:
		return "PageLimitExceeded"
	case PageDecodeError:
		return "PageDecodeError"
	case IncompletePageBundle:
		return "IncompletePageBundle"
	}
	return "Unknown"
}

// DocumentLevel reports whether the kind aborts the whole document
func (k Kind) DocumentLevel() bool {
	return k == CorruptDocument || k == Encrypted || k == PageLimitExceeded
}

// Sentinels for errors.Is
var (
	ErrCorruptDocument      = &Error{Kind: CorruptDocument, Page: -1}
	ErrEncrypted            = &Error{Kind: Encrypted, Page: -1}
	ErrPageLimitExceeded    = &Error{Kind: PageLimitExceeded, Page: -1}
	ErrPageDecode           = &Error{Kind: PageDecodeError, Page: -1}
	ErrIncompletePageBundle = &Error{Kind: IncompletePageBundle, Page: -1}
)

// Error carries a Kind, the 0-based page it concerns (-1 for the document)
// and the underlying cause.
type Error struct {
	Kind Kind
	Page int
	Err  error
}

// New wraps err with a document-level kind
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Page: -1, Err: err}
}

// Newf formats a message for a document-level kind
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return New(kind, fmt.Errorf(format, args...))
}

// ForPage wraps err with a page-level kind
func ForPage(kind Kind, page int, err error) *Error {
	return &Error{Kind: kind, Page: page, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Page >= 0 {
		msg = fmt.Sprintf("%s on page %d", msg, e.Page+1)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the sentinels compare by kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
