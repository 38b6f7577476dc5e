package model

import (
	"fmt"
	"strings"
)

// PreconditionError reports a condition that must hold before any side
// effect: a resolvable package identity, a required tool, a working release
// setup.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// Preconditionf builds a PreconditionError from a format string.
func Preconditionf(format string, args ...any) *PreconditionError {
	return &PreconditionError{Reason: fmt.Sprintf(format, args...)}
}

// AuthenticationError reports credentials the registry rejected after the
// interactive sign-in flow was exhausted.
type AuthenticationError struct {
	Host   string
	Status int
	Body   string
}

func (e *AuthenticationError) Error() string {
	msg := fmt.Sprintf("authentication with %s failed (%d)", e.Host, e.Status)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ":\n" + body
	}
	return msg
}

// RegistryRequestError reports a non-success status from a trusted publisher
// call. Op is "get" or "create". Body is the raw response body.
type RegistryRequestError struct {
	Op     string
	Gem    string
	Status int
	Body   string
}

func (e *RegistryRequestError) Error() string {
	if e.Op == "create" {
		return fmt.Sprintf("failed to configure trusted publisher for %s (%d):\n%s", e.Gem, e.Status, e.Body)
	}
	return fmt.Sprintf("failed to %s trusted publishers for %s (%d):\n%s", e.Op, e.Gem, e.Status, e.Body)
}

// ConflictError reports that an equivalent trusted publisher already exists.
// Nothing needs fixing; it ends the run without a write.
type ConflictError struct {
	Gem          string
	ExistingName string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("trusted publisher for %s already configured for %q", e.Gem, e.ExistingName)
}

// HostCLIError reports a non-zero exit from the source-control host CLI.
type HostCLIError struct {
	Action  string
	Command string
	Output  string
}

func (e *HostCLIError) Error() string {
	return fmt.Sprintf("failed to %s using `%s`:\n%s", e.Action, e.Command, e.Output)
}

// HostAPIError reports a failed call to the source-control host REST API.
type HostAPIError struct {
	Action string
	Err    error
}

func (e *HostAPIError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Action, e.Err)
}

func (e *HostAPIError) Unwrap() error {
	return e.Err
}
