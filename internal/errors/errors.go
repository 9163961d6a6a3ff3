// Package errors defines the pipeline's stable, machine-classifiable error
// kinds (spec §7). Each kind is a distinct struct implementing error, plus
// Unwrap where it wraps an underlying cause, following the same per-kind-struct idiom the rest of this module
// uses for IR/Symbol/Chunk types.
package errors

import (
	"fmt"
	"time"
)

// ErrorType is a stable, machine-classifiable category string. FileError
// carries one in its Type field; the other kinds below have no Type field
// and are told apart by their struct type.
type ErrorType string

const (
	ErrorTypeParse               ErrorType = "parse"
	ErrorTypeIRBuild             ErrorType = "ir_build"
	ErrorTypeSemanticBuild       ErrorType = "semantic_build"
	ErrorTypeExternalAnalyzer    ErrorType = "external_analyzer_unavailable"
	ErrorTypeCrossFileAmbiguity  ErrorType = "cross_file_ambiguity"
	ErrorTypeDependencyCycle     ErrorType = "dependency_cycle"
	ErrorTypeCancelled           ErrorType = "cancelled"
	ErrorTypeFileNotFound        ErrorType = "file_not_found"
	ErrorTypePermission          ErrorType = "permission"
	ErrorTypeConfig              ErrorType = "config"
)

// ParseError is reserved for catastrophic parser failure (§7). Ordinary
// syntax errors produce a partial tree with error nodes and never reach
// this type.
type ParseError struct {
	FilePath   string
	Details    string
	Underlying error
	Timestamp  time.Time
}

func NewParseError(filePath, details string, err error) *ParseError {
	return &ParseError{FilePath: filePath, Details: details, Underlying: err, Timestamp: time.Now()}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s: %v", e.FilePath, e.Details, e.Underlying)
}

func (e *ParseError) Unwrap() error { return e.Underlying }

// IRBuildError is raised only for unrecoverable internal invariants (e.g. a
// missing grammar-kind handler), never for ordinary syntax errors (§4.2, §7).
type IRBuildError struct {
	FilePath  string
	Reason    string
	Timestamp time.Time
}

func NewIRBuildError(filePath, reason string) *IRBuildError {
	return &IRBuildError{FilePath: filePath, Reason: reason, Timestamp: time.Now()}
}

func (e *IRBuildError) Error() string {
	return fmt.Sprintf("IR build error in %s: %s", e.FilePath, e.Reason)
}

// SemanticBuildError is raised only when a Semantic IR logic invariant is
// violated (e.g. an Expression referencing a non-existent block) (§4.4, §7).
type SemanticBuildError struct {
	FilePath  string
	Phase     string
	Reason    string
	Timestamp time.Time
}

func NewSemanticBuildError(filePath, phase, reason string) *SemanticBuildError {
	return &SemanticBuildError{FilePath: filePath, Phase: phase, Reason: reason, Timestamp: time.Now()}
}

func (e *SemanticBuildError) Error() string {
	return fmt.Sprintf("semantic build error in %s (phase %s): %s", e.FilePath, e.Phase, e.Reason)
}

// ExternalAnalyzerUnavailable reports that the type server failed to start
// or crashed. It is non-fatal: C4 degrades gracefully (§4.3, §7).
type ExternalAnalyzerUnavailable struct {
	Reason    string
	Timestamp time.Time
}

func NewExternalAnalyzerUnavailable(reason string) *ExternalAnalyzerUnavailable {
	return &ExternalAnalyzerUnavailable{Reason: reason, Timestamp: time.Now()}
}

func (e *ExternalAnalyzerUnavailable) Error() string {
	return fmt.Sprintf("external type analyzer unavailable: %s", e.Reason)
}

// CrossFileAmbiguity reports a duplicate FQN collision across files (§4.5, §7).
type CrossFileAmbiguity struct {
	FQN        string
	Candidates []string // file paths
	Timestamp  time.Time
}

func NewCrossFileAmbiguity(fqn string, candidates []string) *CrossFileAmbiguity {
	return &CrossFileAmbiguity{FQN: fqn, Candidates: candidates, Timestamp: time.Now()}
}

func (e *CrossFileAmbiguity) Error() string {
	return fmt.Sprintf("ambiguous FQN %q defined in %d files: %v", e.FQN, len(e.Candidates), e.Candidates)
}

// DependencyCycle reports one strongly connected component in the file
// dependency graph (§4.5, §7).
type DependencyCycle struct {
	SCC       []string
	Timestamp time.Time
}

func NewDependencyCycle(scc []string) *DependencyCycle {
	return &DependencyCycle{SCC: scc, Timestamp: time.Now()}
}

func (e *DependencyCycle) Error() string {
	return fmt.Sprintf("dependency cycle across %d files: %v", len(e.SCC), e.SCC)
}

// Cancelled reports cooperative cancellation. The orchestrator returns it
// as the build's error; the cancelled run's partial artifacts are dropped
// and the chunk manifest is left as it was (§5, §7).
type Cancelled struct {
	Phase     string
	Timestamp time.Time
}

func NewCancelled(phase string) *Cancelled {
	return &Cancelled{Phase: phase, Timestamp: time.Now()}
}

func (e *Cancelled) Error() string {
	return fmt.Sprintf("build cancelled during phase %s", e.Phase)
}

// FileError represents a file-system-level error encountered while
// enumerating or reading source files.
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

func NewFileError(op, path string, err error) *FileError {
	errType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errType = ErrorTypePermission
	}
	return &FileError{Type: errType, Path: path, Operation: op, Underlying: err, Timestamp: time.Now()}
}

func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return s == "permission denied" || s == "access denied"
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

func (e *FileError) Unwrap() error { return e.Underlying }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

// MultiError aggregates independent per-file errors into the orchestrator's
// final build summary (§7 propagation policy).
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error { return e.Errors }
