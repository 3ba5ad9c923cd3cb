package services

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	MsgAuthFailed = "Authentication failed"
	MsgNotAllowed = "Not allowed"
)

type ServiceError struct {
	Status  int
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrNotFound(msg string) error {
	return ServiceError{Status: http.StatusNotFound, Message: msg}
}

func ErrBadRequest(msg string) error {
	return ServiceError{Status: http.StatusBadRequest, Message: msg}
}

// ErrForbidden is an authorization denial. Callers never attach record data.
func ErrForbidden() error {
	return ServiceError{Status: http.StatusForbidden, Message: MsgNotAllowed}
}

// ErrUnauthorized never says whether the email or the password was wrong.
func ErrUnauthorized() error {
	return ServiceError{Status: http.StatusUnauthorized, Message: MsgAuthFailed}
}

func ErrConflict(msg string) error {
	return ServiceError{Status: http.StatusConflict, Message: msg}
}

// ErrMisconfigured reports missing upload credentials or a similar setup gap.
func ErrMisconfigured(msg string) error {
	return ServiceError{Status: http.StatusServiceUnavailable, Message: msg}
}

// ErrUpstream carries the message of a failed call to an external service.
func ErrUpstream(msg string) error {
	return ServiceError{Status: http.StatusBadGateway, Message: msg}
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// AsServiceError unwraps err into a ServiceError when it carries one.
func AsServiceError(err error) (ServiceError, bool) {
	var svcErr ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return ServiceError{}, false
}
