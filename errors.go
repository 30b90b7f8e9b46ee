package dumper

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrCasterFailed indicates a caster returned an error while casting a value.
	ErrCasterFailed = errors.New("caster failed")

	// ErrFault indicates a panic was recovered while inspecting a value.
	ErrFault = errors.New("fault while inspecting value")

	// ErrInvalidTag indicates a dump struct tag has an invalid value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrUnmarshal indicates the codec failed to unmarshal an envelope.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal an envelope.
	ErrMarshal = errors.New("marshal failed")

	// ErrConnection indicates a dump could not be written to its destination.
	ErrConnection = errors.New("connection failed")

	// ErrInvalidKey indicates an encryption key has invalid size or format.
	ErrInvalidKey = errors.New("invalid key")
)

// CasterError is the contained failure stored in a representation's sentinel entry.
// It wraps ErrCasterFailed or ErrFault.
type CasterError struct {
	Err   error   // ErrCasterFailed or ErrFault
	Type  string  // display label of the value being cast
	Key   TypeKey // registry key whose chain failed, empty outside a chain
	Cause error   // error returned by the caster, or the recovered fault
}

func (e *CasterError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s for %s (%s): %v", e.Err.Error(), e.Type, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s for %s: %v", e.Err.Error(), e.Type, e.Cause)
}

func (e *CasterError) Unwrap() []error {
	return []error{e.Err, e.Cause}
}

// FaultError is a recovered panic turned into an error.
type FaultError struct {
	Value any // the value passed to panic
}

func (e *FaultError) Error() string {
	if err, ok := e.Value.(error); ok {
		return fmt.Sprintf("%s: %v", ErrFault.Error(), err)
	}
	return fmt.Sprintf("%s: %v", ErrFault.Error(), e.Value)
}

func (e *FaultError) Unwrap() error {
	return ErrFault
}

// TagError reports a dump tag whose value is not recognized.
type TagError struct {
	Tag   string
	Value string
	Field string
}

func (e *TagError) Error() string {
	return fmt.Sprintf("%s %s:%q (field %s)", ErrInvalidTag.Error(), e.Tag, e.Value, e.Field)
}

func (e *TagError) Unwrap() error {
	return ErrInvalidTag
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// ConnectionError reports a failed write to a dump destination.
type ConnectionError struct {
	Target string // address or stream name
	Cause  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrConnection.Error(), e.Target, e.Cause)
}

func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnection, e.Cause}
}

// newCasterError creates a CasterError, classifying recovered faults.
func newCasterError(typ string, key TypeKey, cause error) *CasterError {
	sentinel := ErrCasterFailed
	if errors.Is(cause, ErrFault) {
		sentinel = ErrFault
	}
	return &CasterError{
		Err:   sentinel,
		Type:  typ,
		Key:   key,
		Cause: cause,
	}
}

// newTagError creates a TagError for an unrecognized tag value.
func newTagError(tag, value, field string) error {
	return &TagError{Tag: tag, Value: value, Field: field}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}

// newConnectionError creates a ConnectionError.
func newConnectionError(target string, cause error) error {
	return &ConnectionError{Target: target, Cause: cause}
}
