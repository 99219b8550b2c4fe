// Package errors provides the error types shared across gocart.
//
// All constructors attach a stack trace via cockroachdb/errors, and every
// typed error implements zerolog's LogObjectMarshaler so callers can emit
// structured error context without string parsing.
package errors

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Model lifecycle errors
//
// ===========================================================================

// NotFittedError is returned when Predict, PredictProba or Score is called
// on an estimator whose Fit has not completed.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("gocart: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when an input matrix or vector has a shape
// other than the one the operation expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("gocart: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError is returned when a hyperparameter fails validation,
// for example a minimum node size below one.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gocart: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError is returned when an argument value is malformed or out of
// range for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("gocart: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Tree construction errors
//
// ===========================================================================

// EmptySubsetError is returned when a build or split operation receives
// zero rows. The minimum-node-size guard makes this unreachable through
// normal recursion; it is still checked at every entry point.
type EmptySubsetError struct {
	Op string
}

func (e *EmptySubsetError) Error() string {
	return fmt.Sprintf("gocart: %s: empty sample subset", e.Op)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *EmptySubsetError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("type", "EmptySubsetError")
}

// NewEmptySubsetError creates an EmptySubsetError with a stack trace.
func NewEmptySubsetError(op string) error {
	err := &EmptySubsetError{Op: op}
	return errors.WithStack(err)
}

// FeatureCardinalityError is returned when a categorical feature has more
// observed levels than the exhaustive bipartition search allows.
type FeatureCardinalityError struct {
	Feature string
	Levels  int
	Cap     int
}

func (e *FeatureCardinalityError) Error() string {
	return fmt.Sprintf("gocart: categorical feature '%s' has %d levels, exceeding the cap of %d", e.Feature, e.Levels, e.Cap)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *FeatureCardinalityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("feature", e.Feature).
		Int("levels", e.Levels).
		Int("cap", e.Cap).
		Str("type", "FeatureCardinalityError")
}

// NewFeatureCardinalityError creates a FeatureCardinalityError with a stack trace.
func NewFeatureCardinalityError(feature string, levels, cap int) error {
	err := &FeatureCardinalityError{Feature: feature, Levels: levels, Cap: cap}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Pruning errors
//
// ===========================================================================

// SizeNotOnPathError is returned when a requested terminal-node count does
// not appear on a pruning path. Nearest carries the largest achievable size
// below the request (0 if none) so the caller can retry.
type SizeNotOnPathError struct {
	Requested int
	Nearest   int
	Available []int
}

func (e *SizeNotOnPathError) Error() string {
	sizes := make([]string, len(e.Available))
	for i, s := range e.Available {
		sizes[i] = fmt.Sprintf("%d", s)
	}
	return fmt.Sprintf("gocart: no subtree with %d leaves on the pruning path (nearest smaller: %d, available: [%s])",
		e.Requested, e.Nearest, strings.Join(sizes, " "))
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *SizeNotOnPathError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("requested", e.Requested).
		Int("nearest", e.Nearest).
		Ints("available", e.Available).
		Str("type", "SizeNotOnPathError")
}

// NewSizeNotOnPathError creates a SizeNotOnPathError with a stack trace.
func NewSizeNotOnPathError(requested, nearest int, available []int) error {
	err := &SizeNotOnPathError{Requested: requested, Nearest: nearest, Available: available}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Prediction errors
//
// ===========================================================================

// SchemaMismatchError is returned when a prediction-time row does not match
// the schema the tree was trained on, such as a missing feature column or a
// feature whose kind changed between training and prediction.
type SchemaMismatchError struct {
	Op       string
	Feature  string
	Expected string
	Got      string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("gocart: %s: schema mismatch on feature '%s': expected %s, got %s", e.Op, e.Feature, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *SchemaMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("feature", e.Feature).
		Str("expected", e.Expected).
		Str("got", e.Got).
		Str("type", "SchemaMismatchError")
}

// NewSchemaMismatchError creates a SchemaMismatchError with a stack trace.
func NewSchemaMismatchError(op, feature, expected, got string) error {
	err := &SchemaMismatchError{Op: op, Feature: feature, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// UnseenCategoryError is returned when a categorical value observed at
// prediction time never appeared during training for that feature.
type UnseenCategoryError struct {
	Feature string
	Value   float64
}

func (e *UnseenCategoryError) Error() string {
	return fmt.Sprintf("gocart: unseen categorical level %v for feature '%s'", e.Value, e.Feature)
}

// MarshalZerologObject adds structured error context to a zerolog event.
func (e *UnseenCategoryError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("feature", e.Feature).
		Float64("value", e.Value).
		Str("type", "UnseenCategoryError")
}

// NewUnseenCategoryError creates an UnseenCategoryError with a stack trace.
func NewUnseenCategoryError(feature string, value float64) error {
	err := &UnseenCategoryError{Feature: feature, Value: value}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors re-exports
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates an error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an operation receives no data at all.
	ErrEmptyData = New("empty data")
)
