package controls

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KilimcininKorOglu/obasdk/internal/ber"
	"github.com/KilimcininKorOglu/obasdk/internal/ldap"
)

// GeneratePasswordResponseOID is the OID of the generate password response control.
const GeneratePasswordResponseOID = "1.3.6.1.4.1.30221.2.5.59"

func init() {
	ldap.RegisterControlDecoder(GeneratePasswordResponseOID, func(c ldap.Control) (any, error) {
		return DecodeGeneratePasswordResponse(c)
	})
}

// tagSecondsUntilExpiration is the context tag [0] of the expiration field.
const tagSecondsUntilExpiration = 0

// Errors for building a GeneratePasswordResponse locally
var (
	// ErrInvalidPassword is returned when the generated password is empty
	ErrInvalidPassword = errors.New("controls: generated password must not be empty")

	// ErrNegativeExpiration is returned when the expiration is negative
	ErrNegativeExpiration = errors.New("controls: seconds until expiration must not be negative")
)

// GeneratePasswordResponse is returned with an add result when the server
// generated the new entry's password.
//
//	GeneratePasswordResponse ::= SEQUENCE {
//	    generatedPassword          OCTET STRING,
//	    mustChangePassword         BOOLEAN,
//	    secondsUntilExpiration     [0] INTEGER OPTIONAL,
//	    ... }
//
// Values are immutable once built.
type GeneratePasswordResponse struct {
	password   []byte
	mustChange bool
	expiration *int64
	critical   bool
	value      []byte
}

// NewGeneratePasswordResponse creates a response control. A nil secs leaves
// the expiration absent.
func NewGeneratePasswordResponse(password []byte, mustChange bool, secs *int64) (*GeneratePasswordResponse, error) {
	if len(password) == 0 {
		return nil, ErrInvalidPassword
	}
	if secs != nil && *secs < 0 {
		return nil, ErrNegativeExpiration
	}

	r := &GeneratePasswordResponse{
		password:   append([]byte(nil), password...),
		mustChange: mustChange,
	}
	if secs != nil {
		v := *secs
		r.expiration = &v
	}

	value, err := r.encodeValue()
	if err != nil {
		return nil, err
	}
	r.value = value
	return r, nil
}

// NewGeneratePasswordResponseString creates a response control from a text password.
func NewGeneratePasswordResponseString(password string, mustChange bool, secs *int64) (*GeneratePasswordResponse, error) {
	return NewGeneratePasswordResponse([]byte(password), mustChange, secs)
}

// DecodeGeneratePasswordResponse decodes the control from its envelope.
// Elements after the mandatory two are matched by tag; unknown tags are skipped.
func DecodeGeneratePasswordResponse(ctrl ldap.Control) (*GeneratePasswordResponse, error) {
	if !ctrl.HasValue() {
		return nil, ldap.NewMissingValueError(ctrl.OID, "generate password response control has no value")
	}

	elements, err := ber.DecodeSequence(ctrl.Value)
	if err != nil {
		return nil, malformed(ctrl.OID, "value is not a sequence", err)
	}
	if len(elements) < 2 {
		return nil, malformed(ctrl.OID, fmt.Sprintf("expected at least 2 elements, got %d", len(elements)), nil)
	}

	password, err := elements[0].AsOctetString()
	if err != nil {
		return nil, malformed(ctrl.OID, "invalid generated password", err)
	}
	if len(password) == 0 {
		return nil, malformed(ctrl.OID, "generated password is empty", nil)
	}

	mustChange, err := elements[1].AsBoolean()
	if err != nil {
		return nil, malformed(ctrl.OID, "invalid must change password flag", err)
	}

	r := &GeneratePasswordResponse{
		password:   password,
		mustChange: mustChange,
		critical:   ctrl.Criticality,
		value:      append([]byte(nil), ctrl.Value...),
	}

	for _, el := range elements[2:] {
		if el.Identifier() != ber.ContextIdentifier(tagSecondsUntilExpiration) {
			continue
		}
		secs, err := el.AsInteger()
		if err != nil {
			return nil, malformed(ctrl.OID, "invalid seconds until expiration", err)
		}
		if secs < 0 {
			return nil, malformed(ctrl.OID, "seconds until expiration is negative", nil)
		}
		r.expiration = &secs
	}

	return r, nil
}

// GetGeneratePasswordResponse returns the generate password response control
// from controls, or nil if none is present.
func GetGeneratePasswordResponse(controls []ldap.Control) (*GeneratePasswordResponse, error) {
	ctrl, ok := ldap.FindControl(controls, GeneratePasswordResponseOID)
	if !ok {
		return nil, nil
	}
	if r, ok := ctrl.Decoded().(*GeneratePasswordResponse); ok {
		return r, nil
	}
	return DecodeGeneratePasswordResponse(ctrl)
}

func (r *GeneratePasswordResponse) encodeValue() ([]byte, error) {
	elements := []ber.Element{
		ber.NewOctetStringElement(r.password),
		ber.NewBooleanElement(r.mustChange),
	}
	if r.expiration != nil {
		elements = append(elements, ber.NewIntegerElement(ber.ClassContextSpecific, tagSecondsUntilExpiration, *r.expiration))
	}
	return ber.EncodeSequence(elements...)
}

// ToControl returns the envelope carrying this control. The envelope has the
// typed value attached.
func (r *GeneratePasswordResponse) ToControl() ldap.Control {
	ctrl := ldap.NewControl(GeneratePasswordResponseOID, r.critical, append([]byte(nil), r.value...))
	return ctrl.WithDecoded(r)
}

// Password returns a copy of the generated password.
func (r *GeneratePasswordResponse) Password() []byte {
	return append([]byte(nil), r.password...)
}

// PasswordString returns the generated password as text.
func (r *GeneratePasswordResponse) PasswordString() string {
	return string(r.password)
}

// MustChangePassword reports whether the password must be changed on first use.
func (r *GeneratePasswordResponse) MustChangePassword() bool {
	return r.mustChange
}

// SecondsUntilExpiration returns the password lifetime, if the server sent one.
func (r *GeneratePasswordResponse) SecondsUntilExpiration() (int64, bool) {
	if r.expiration == nil {
		return 0, false
	}
	return *r.expiration, true
}

// IsCritical reports the envelope criticality.
func (r *GeneratePasswordResponse) IsCritical() bool {
	return r.critical
}

// ControlName returns a human readable name for the control.
func (r *GeneratePasswordResponse) ControlName() string {
	return "Generate Password Response Control"
}

// String returns a description that never includes the password.
func (r *GeneratePasswordResponse) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "GeneratePasswordResponseControl(mustChangePassword=%t", r.mustChange)
	if r.expiration != nil {
		fmt.Fprintf(&b, ", secondsUntilExpiration=%d", *r.expiration)
	}
	b.WriteByte(')')
	return b.String()
}

func malformed(oid, message string, cause error) error {
	return ldap.NewMalformedValueError(oid, message, cause)
}
