package foam

import (
	"errors"
	"fmt"
)

// Structural sentinel errors, declared as a flat var block so callers can
// match with errors.Is rather than parsing ad-hoc fmt.Errorf strings.
var (
	ErrMultipleTrainIds = errors.New("packet metadata disagrees on train id")
	ErrCatalogModuleEmpty = errors.New("wildcard device name requires a non-empty module index set")
	ErrShapeMismatch = errors.New("array shape mismatch")
	ErrZeroDenominator = errors.New("normalizer denominator is zero")
	ErrNoNormalizer = errors.New("normalizer produced no value")
	ErrDisjointRequired = errors.New("same-train pump-probe on/off index sets must be disjoint")
	ErrMaskLoad = errors.New("error loading mask or geometry file")
	ErrSlicedIndices = errors.New("sliced_indices length or uniqueness invalid")
)

// UnknownParameterError is fatal for the affected train and surfaces to the
// operator. It wraps whichever configuration value could not be
// resolved against the processor's known set of analysis types, property
// names, or enums.
type UnknownParameterError struct {
	Processor string
	Parameter string
	Value string
}

func (e *UnknownParameterError) Error() string {
	return fmt.Sprintf("%s: unknown parameter %q=%q", e.Processor, e.Parameter, e.Value)
}

// ProcessingError is an expected, data-dependent failure. The scheduler logs
// it and suppresses the affected field for that train only; it never stops
// the composite (use StopCompositionProcessing for that).
type ProcessingError struct {
	Processor string
	Reason string
	Err error
}

func (e *ProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Processor, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Processor, e.Reason)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// NewProcessingError is a small constructor to avoid repeating the struct
// literal at every recoverable failure site.
func NewProcessingError(processor, reason string, err error) *ProcessingError {
	return &ProcessingError{Processor: processor, Reason: reason, Err: err}
}

// FatalProcessingError marks a data-dependent failure that is fatal rather
// than recoverable (an image-mask shape mismatch against the conditioned
// image, for instance), distinct from the generally-recoverable
// ProcessingError used for things like background-subtraction shape
// mismatches.
type FatalProcessingError struct {
	Processor string
	Reason string
	Err error
}

func (e *FatalProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Processor, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Processor, e.Reason)
}

func (e *FatalProcessingError) Unwrap() error {
	return e.Err
}

func NewFatalProcessingError(processor, reason string, err error) *FatalProcessingError {
	return &FatalProcessingError{Processor: processor, Reason: reason, Err: err}
}

// StopCompositionProcessing is returned by a leaf processor to halt the
// remainder of a composite's child list without treating it as an error —
// a sentinel return value rather than exception-style control flow.
var StopCompositionProcessing = errors.New("stop composition processing")
