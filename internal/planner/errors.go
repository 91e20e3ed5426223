package planner

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a generate or update call is already in flight.
var ErrBusy = errors.New("another generate or update request is in progress")

// ValidationError reports bad caller input. Its message is safe to show to
// the end user verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConfigurationError reports a missing upstream credential.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "API key not configured. Please set OPENAI_API_KEY environment variable."
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a transport failure or an unusable upstream response.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConfiguration(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}
