// Package errors provides the custom error types used throughout the icecat
// catalog. The types split failures into the three classes the sync and query
// paths care about: recoverable conditions callers branch on (not found, load
// failures), per-file conditions absorbed during a sync pass (parse failures),
// and consistency faults that must abort the current operation (duplicate
// dataset records, unreadable stores).
package errors

import (
	"context"
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the catalog system.
var (
	// ErrNotFound indicates that no dataset matched a query.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateDataset indicates that more than one dataset record exists
	// for a single identity key. This is a consistency fault, never a soft
	// condition.
	ErrDuplicateDataset = errors.New("duplicate dataset")

	// ErrCorruptFile indicates that a data file could not be parsed.
	ErrCorruptFile = errors.New("corrupt file")

	// ErrStoreClosed indicates an operation on a closed catalog store.
	ErrStoreClosed = errors.New("store closed")

	// ErrNoLoader indicates that a handle has no loader to materialize with.
	ErrNoLoader = errors.New("no loader configured")

	// ErrInvalidInput indicates that provided input was invalid.
	ErrInvalidInput = errors.New("invalid input")
)

// NotFoundError represents a query that matched no dataset records.
type NotFoundError struct {
	Product string
	Query   string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("no %s data found for %s", e.Product, e.Query)
	}
	return fmt.Sprintf("no %s data found", e.Product)
}

// Is implements errors.Is support.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(product, query string) *NotFoundError {
	return &NotFoundError{Product: product, Query: query}
}

// DuplicateDatasetError reports that two or more dataset records share one
// identity key. Syncs must abort on this rather than guess which record is
// authoritative.
type DuplicateDatasetError struct {
	Product  string
	Identity string
	Count    int
}

// Error implements the error interface.
func (e *DuplicateDatasetError) Error() string {
	return fmt.Sprintf("%d %s dataset records share identity %s; expected at most one",
		e.Count, e.Product, e.Identity)
}

// Is implements errors.Is support.
func (e *DuplicateDatasetError) Is(target error) bool {
	return target == ErrDuplicateDataset
}

// NewDuplicateDatasetError creates a new DuplicateDatasetError.
func NewDuplicateDatasetError(product, identity string, count int) *DuplicateDatasetError {
	return &DuplicateDatasetError{Product: product, Identity: identity, Count: count}
}

// OpenError represents a failure to create or open a catalog store.
type OpenError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *OpenError) Error() string {
	return fmt.Sprintf("opening store %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *OpenError) Unwrap() error {
	return e.Err
}

// NewOpenError creates a new OpenError.
func NewOpenError(path string, err error) *OpenError {
	return &OpenError{Path: path, Err: err}
}

// LoadError represents a failure to materialize a dataset from a handle.
// The catalog makes no freshness guarantee between query time and load time,
// so a file deleted or truncated since the last sync surfaces here.
type LoadError struct {
	Product string
	Path    string
	Err     error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("loading %s dataset from %s: %v", e.Product, e.Path, e.Err)
	}
	return fmt.Sprintf("loading %s dataset: %v", e.Product, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new LoadError.
func NewLoadError(product, path string, err error) *LoadError {
	return &LoadError{Product: product, Path: path, Err: err}
}

// ParseError represents a failure to extract identity keys from a data file.
// During a sync pass this is recorded as a corrupt file, not raised.
type ParseError struct {
	Product string
	Path    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("parsing %s file %s: %s", e.Product, e.Path, e.Message)
	}
	return fmt.Sprintf("parsing %s file %s: %v", e.Product, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *ParseError) Is(target error) bool {
	return target == ErrCorruptFile
}

// NewParseError creates a new ParseError.
func NewParseError(product, path, message string, err error) *ParseError {
	return &ParseError{Product: product, Path: path, Message: message, Err: err}
}

// IOError represents an error during store or filesystem I/O.
type IOError struct {
	Operation string // "read", "write", "walk", "stat", "rename"
	Path      string
	Err       error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap.
func (e *IOError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewConfigError creates a new ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// Wrapping helpers for consistent error creation.

// WrapIO wraps an error with I/O context.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapOpen wraps an error from opening a store.
func WrapOpen(path string, err error) error {
	if err == nil {
		return nil
	}
	return NewOpenError(path, err)
}

// WrapLoad wraps an error from materializing a dataset.
func WrapLoad(product, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewLoadError(product, path, err)
}

// WrapParse wraps an error from parsing a data file.
func WrapParse(product, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(product, path, "", err)
}

// Helper functions for error checking.

// IsNotFound checks if an error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateDataset checks if an error is a duplicate dataset fault.
func IsDuplicateDataset(err error) bool {
	return errors.Is(err, ErrDuplicateDataset)
}

// IsCorruptFile checks if an error marks an unparseable data file.
func IsCorruptFile(err error) bool {
	return errors.Is(err, ErrCorruptFile)
}

// IsCanceled checks if an error stems from context cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Is reports whether any error in err's chain matches target.
// It's an alias for the standard library errors.Is.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// It's an alias for the standard library errors.As.
var As = errors.As
