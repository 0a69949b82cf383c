package extraTree

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when training is requested on a dataset without rows.
	ErrEmptyDataset = errors.New("extraTree: dataset has no rows")
	// ErrInvalidConfig is wrapped by every *ConfigError.
	ErrInvalidConfig = errors.New("extraTree: invalid configuration")
	// ErrDimensionMismatch is wrapped by every *DimensionError.
	ErrDimensionMismatch = errors.New("extraTree: sample dimension mismatch")
	// ErrNotTrained is returned when predicting with a tree or forest that has no root.
	ErrNotTrained = errors.New("extraTree: model is not trained")
	// ErrLengthMismatch is returned when samples and labels differ in length.
	ErrLengthMismatch = errors.New("extraTree: samples and labels differ in length")
	// ErrRaggedDataset is returned when rows do not share one feature count.
	ErrRaggedDataset = errors.New("extraTree: rows differ in feature count")
	// ErrNoFeatures is returned when training on rows without features.
	ErrNoFeatures = errors.New("extraTree: dataset has no features")
	// ErrCorruptDocument is returned when a stored tree cannot be rebuilt.
	ErrCorruptDocument = errors.New("extraTree: corrupt tree document")
)

// ConfigError reports the offending configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("extraTree: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// DimensionError reports a sample whose width differs from the trained width.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("extraTree: sample has %d features, tree was trained on %d", e.Got, e.Want)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }
