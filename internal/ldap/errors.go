package ldap

import (
	"errors"
	"fmt"
)

// Value decoding errors. Typed codecs return them wrapped in a *ValueError.
var (
	// ErrMissingValue is returned when an envelope that requires a value has none
	ErrMissingValue = errors.New("ldap: value is missing")

	// ErrMalformedValue is returned when a value cannot be decoded
	ErrMalformedValue = errors.New("ldap: value is malformed")
)

// ValueError reports a failure to decode the value of a control or extended
// operation. Err is ErrMissingValue or ErrMalformedValue; Cause holds the
// underlying codec error, if any.
type ValueError struct {
	OID     string
	Err     error
	Message string
	Cause   error
}

// NewMissingValueError creates a ValueError for an absent value.
func NewMissingValueError(oid, message string) *ValueError {
	return &ValueError{OID: oid, Err: ErrMissingValue, Message: message}
}

// NewMalformedValueError creates a ValueError for an undecodable value.
func NewMalformedValueError(oid, message string, cause error) *ValueError {
	return &ValueError{OID: oid, Err: ErrMalformedValue, Message: message, Cause: cause}
}

// Error implements the error interface
func (e *ValueError) Error() string {
	msg := fmt.Sprintf("ldap: cannot decode %s: %s", e.OID, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the error kind and the cause to errors.Is and errors.As.
func (e *ValueError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// ResultCode returns the client-side result code for decode failures.
func (e *ValueError) ResultCode() ResultCode {
	return ResultDecodingError
}

// ResultError reports an operation that completed with a non-success result.
type ResultError struct {
	Op     string
	Result LDAPResult
}

// Error implements the error interface
func (e *ResultError) Error() string {
	return fmt.Sprintf("ldap: %s failed: %s", e.Op, e.Result)
}

// ResultCode returns the result code the server sent.
func (e *ResultError) ResultCode() ResultCode {
	return e.Result.ResultCode
}

// ResultCodeOf extracts the result code carried by err, reporting false when
// err carries none.
func ResultCodeOf(err error) (ResultCode, bool) {
	var coded interface{ ResultCode() ResultCode }
	if errors.As(err, &coded) {
		return coded.ResultCode(), true
	}
	return 0, false
}
