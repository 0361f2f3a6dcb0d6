package fault

import (
	"errors"
	"fmt"
)

// Core errors
var (
	// Configuration errors

	ErrConfiguration   = errors.New("configuration error")
	ErrEmptyCatalog    = errors.New("variant catalog is empty")
	ErrMissingObserver = errors.New("observer reference is missing")
	ErrUnknownContent  = errors.New("content reference cannot be constructed")

	// Pool errors

	ErrPoolExhausted = errors.New("pool exhausted")
	ErrDoubleRelease = errors.New("slot released twice")
	ErrStaleSlot     = errors.New("stale pool slot")

	// Spawn errors

	ErrMissingCapability = errors.New("instance lacks required capability")
	ErrUnknownDescriptor = errors.New("unknown descriptor")
	ErrUnknownHandle     = errors.New("unknown entity handle")
	ErrCapReached        = errors.New("active entity cap reached")

	// Placement errors

	ErrPlacementFailed = errors.New("placement failed")
	ErrTooClose        = errors.New("too close to an existing pickup")

	ErrDisabled = errors.New("subsystem disabled")
)

// Kind classifies core errors by how the caller should react.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindPoolExhausted
	KindPlacementFailed
	KindMissingCapability
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindPoolExhausted:
		return "PoolExhausted"
	case KindPlacementFailed:
		return "PlacementFailed"
	case KindMissingCapability:
		return "MissingCapability"
	default:
		return "Unknown"
	}
}

// Error carries the kind and the failing operation along with the cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Op + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel belonging to the error's kind, so
// errors.Is(err, ErrConfiguration) holds for any configuration fault.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinel[e.Kind]
	return ok && target == sentinel
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// IsRecoverable reports whether the action can simply be skipped.
// Every kind in the core is recoverable; configuration errors disable a subsystem instead.
func (e *Error) IsRecoverable() bool {
	return e.Kind != KindConfiguration
}

var kindSentinel = map[Kind]error{
	KindConfiguration:     ErrConfiguration,
	KindPoolExhausted:     ErrPoolExhausted,
	KindPlacementFailed:   ErrPlacementFailed,
	KindMissingCapability: ErrMissingCapability,
}

func New(kind Kind, op string, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

func Configuration(op string, cause error, format string, args ...any) *Error {
	return New(KindConfiguration, op, cause, format, args...)
}

func PoolExhausted(op, prototype string) *Error {
	return New(KindPoolExhausted, op, nil, "no free instance of %q", prototype).WithContext("prototype", prototype)
}

func PlacementFailed(op string, attempts int) *Error {
	return New(KindPlacementFailed, op, nil, "no valid position after %d attempts", attempts).WithContext("attempts", attempts)
}

func MissingCapability(op, prototype string) *Error {
	return New(KindMissingCapability, op, nil, "instance of %q cannot be initialized", prototype).WithContext("prototype", prototype)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
