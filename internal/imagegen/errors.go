package imagegen

import "errors"

// Kind is one of the three user-visible failure classes.
type Kind int

const (
	KindMissingInput Kind = iota + 1
	KindFileRead
	KindGeneration
)

func (k Kind) String() string {
	switch k {
	case KindMissingInput:
		return "missing input"
	case KindFileRead:
		return "file read failure"
	case KindGeneration:
		return "generation failure"
	default:
		return "unknown failure"
	}
}

// Message is the display string shown to the user. It never includes the underlying cause.
func (k Kind) Message() string {
	switch k {
	case KindMissingInput:
		return "Please upload an image and provide a prompt."
	case KindFileRead:
		return "Could not read the uploaded image."
	default:
		return "Failed to generate image. The AI model may be busy or the request could not be processed."
	}
}

// Error carries a failure class plus the cause, which is kept for logs only.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrGeneration) works
// regardless of the wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrMissingInput = &Error{Kind: KindMissingInput}
	ErrFileRead     = &Error{Kind: KindFileRead}
	ErrGeneration   = &Error{Kind: KindGeneration}
)

// UserMessage maps err to its display string.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.Message()
	}
	return KindGeneration.Message()
}
