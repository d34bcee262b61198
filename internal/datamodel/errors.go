package datamodel

import (
	"errors"
	"fmt"
)

// Error kinds returned by the datamodel. Match them with errors.Is.
var (
	ErrParse                     = errors.New("parse entity")
	ErrSchemaTooNew              = errors.New("schema version is newer than supported")
	ErrPathNotSet                = errors.New("path is not set")
	ErrUnknownRelationship       = errors.New("unknown relationship")
	ErrInvalidParentType         = errors.New("invalid parent type")
	ErrRequiredField             = errors.New("required field")
	ErrInvalidValue              = errors.New("invalid value")
	ErrEmptyOutputScores         = errors.New("output scores are required")
	ErrDuplicateOutputScoreName  = errors.New("output score names must be unique")
	ErrCustomScoreNotAllowed     = errors.New("custom scores are not supported in evaluators")
	ErrMissingEvalSteps          = errors.New("eval_steps is required")
	ErrNonSerializableProperty   = errors.New("properties must be JSON serializable")
	ErrHumanDataSourceNotAllowed = errors.New("human data sources are not allowed")
	ErrScoreSchemaMismatch       = errors.New("scores do not match the eval output scores")
	ErrScoreRange                = errors.New("score out of range")
)

// FieldError describes a validation failure on a single field.
type FieldError struct {
	Entity  TypeName
	Field   string
	Value   any
	Message string
	Kind    error
}

// Error renders the field, message and offending value.
func (err *FieldError) Error() string {
	if err == nil {
		return ""
	}
	msg := err.Message
	if msg == "" && err.Kind != nil {
		msg = err.Kind.Error()
	}
	if err.Value != nil {
		return fmt.Sprintf("%s.%s: %s (got %v)", err.Entity, err.Field, msg, err.Value)
	}
	return fmt.Sprintf("%s.%s: %s", err.Entity, err.Field, msg)
}

// Unwrap exposes the error kind.
func (err *FieldError) Unwrap() error {
	return err.Kind
}

func fieldError(entity TypeName, field string, kind error, value any, format string, args ...any) *FieldError {
	return &FieldError{
		Entity:  entity,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
		Kind:    kind,
	}
}

func requiredError(entity TypeName, field string) *FieldError {
	return &FieldError{Entity: entity, Field: field, Message: "is required", Kind: ErrRequiredField}
}

// parseError wraps a decode failure for a file.
func parseError(path string, err error) error {
	if path == "" {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return fmt.Errorf("%w %s: %v", ErrParse, path, err)
}
