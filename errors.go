// Package dtoforge provides the shared contracts of the DTO generator:
// the error taxonomy used across resolution and generation, and the
// cache interface implemented by the memoization layer.
package dtoforge

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Standard sentinel errors for common failure classes.
var (
	// ErrResolution indicates that a structural requirement of an entity
	// could not be satisfied (e.g. a relation target without a primary key).
	ErrResolution = errors.New("dtoforge: resolution failed")

	// ErrFileSystem indicates that an output file or directory could not
	// be created or written.
	ErrFileSystem = errors.New("dtoforge: file system operation failed")

	// ErrGeneration indicates that a generation run finished with one or
	// more recorded failures.
	ErrGeneration = errors.New("dtoforge: generation failed")

	// ErrUnknown wraps unexpected failures so the final report always
	// carries a consistent shape.
	ErrUnknown = errors.New("dtoforge: unknown error")
)

// ResolutionError reports a structural requirement that could not be
// satisfied for a specific entity, property and operation. It is fatal for
// that field/entity but never halts a batch; the scheduler records it and
// keeps going.
type ResolutionError struct {
	Entity    string // entity name
	Property  string // property name, if applicable
	Operation string // operation name, if applicable
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString("dtoforge: resolution error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Property != "" {
		b.WriteString(" property ")
		b.WriteString(e.Property)
	}
	if e.Operation != "" {
		fmt.Fprintf(&b, " (operation %s)", e.Operation)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for ResolutionError.
func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

// NewResolutionError creates a new ResolutionError.
func NewResolutionError(entity, property, operation, message string) *ResolutionError {
	return &ResolutionError{
		Entity:    entity,
		Property:  property,
		Operation: operation,
		Message:   message,
	}
}

// IsResolution returns true if the error is a ResolutionError.
func IsResolution(err error) bool {
	if err == nil {
		return false
	}
	var e *ResolutionError
	return errors.As(err, &e) || errors.Is(err, ErrResolution)
}

// FileError reports an I/O failure while writing generated output. It is
// produced by the writer layer and aggregated by the scheduler exactly like
// a resolution error.
type FileError struct {
	Path  string
	Op    string // "create", "mkdir", "write"
	Cause error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("dtoforge: file error (%s %s): %v", e.Op, e.Path, e.Cause)
	}
	return fmt.Sprintf("dtoforge: file error (%s): %v", e.Path, e.Cause)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error { return e.Cause }

// Is reports whether the target matches the sentinel error for FileError.
func (e *FileError) Is(target error) bool { return target == ErrFileSystem }

// NewFileError creates a new FileError.
func NewFileError(op, path string, cause error) *FileError {
	return &FileError{Op: op, Path: path, Cause: cause}
}

// IsFile returns true if the error is a FileError.
func IsFile(err error) bool {
	if err == nil {
		return false
	}
	var e *FileError
	return errors.As(err, &e) || errors.Is(err, ErrFileSystem)
}

// Failure records one failed (entity, generator kind) pair collected during
// a run.
type Failure struct {
	Entity string
	Kind   string
	Err    error
}

// String returns a one-line description of the failure.
func (f Failure) String() string {
	return fmt.Sprintf("%s/%s: %v", f.Entity, f.Kind, f.Err)
}

// AggregateError is raised exactly once at the end of a run that recorded
// failures. It enumerates every failed entity/generator pair; successful
// entities produced full output before it is raised.
type AggregateError struct {
	Failures []Failure
}

// Error implements the error interface. Failures are reported sorted by
// entity then generator kind so the message is deterministic regardless of
// completion timing.
func (e *AggregateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dtoforge: generation failed for %d target(s):", len(e.Failures))
	for _, f := range e.Sorted() {
		b.WriteString("\n\t")
		b.WriteString(f.String())
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for AggregateError.
func (e *AggregateError) Is(target error) bool { return target == ErrGeneration }

// Sorted returns the failures ordered by entity name, then kind. The
// receiver is not modified.
func (e *AggregateError) Sorted() []Failure {
	out := make([]Failure, len(e.Failures))
	copy(out, e.Failures)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Entity != out[j].Entity {
			return out[i].Entity < out[j].Entity
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// FailedEntities returns the distinct entity names with at least one
// recorded failure, sorted.
func (e *AggregateError) FailedEntities() []string {
	seen := make(map[string]struct{}, len(e.Failures))
	var names []string
	for _, f := range e.Failures {
		if _, ok := seen[f.Entity]; !ok {
			seen[f.Entity] = struct{}{}
			names = append(names, f.Entity)
		}
	}
	sort.Strings(names)
	return names
}

// NewAggregateError creates a new AggregateError from the recorded failures.
func NewAggregateError(failures []Failure) *AggregateError {
	return &AggregateError{Failures: failures}
}

// IsAggregate returns true if the error is an AggregateError.
func IsAggregate(err error) bool {
	if err == nil {
		return false
	}
	var e *AggregateError
	return errors.As(err, &e) || errors.Is(err, ErrGeneration)
}

// WrapUnknown classifies an arbitrary error for aggregation. Resolution and
// file errors pass through unchanged; anything else is wrapped with the
// generic unknown code so the final report has a consistent shape.
func WrapUnknown(err error) error {
	if err == nil {
		return nil
	}
	if IsResolution(err) || IsFile(err) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUnknown, err)
}
