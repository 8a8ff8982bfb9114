package ldap

import (
	"errors"

	"github.com/KilimcininKorOglu/obasdk/internal/ber"
)

// AuthenticationChoice tags
const (
	// AuthSimple is the tag for simple authentication [0]
	AuthSimple = 0
	// AuthSASL is the tag for SASL authentication [3]
	AuthSASL = 3
)

// AuthMethod is the authentication choice of a BindRequest.
type AuthMethod int

const (
	// AuthMethodSimple is password authentication
	AuthMethodSimple AuthMethod = iota
	// AuthMethodSASL is SASL authentication
	AuthMethodSASL
)

// String returns the name of the method.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodSimple:
		return "Simple"
	case AuthMethodSASL:
		return "SASL"
	default:
		return "Unknown"
	}
}

// Bind errors
var (
	// ErrInvalidBindVersion is returned when the bind version is out of range
	ErrInvalidBindVersion = errors.New("ldap: bind version must be between 1 and 127")
	// ErrUnknownAuthMethod is returned when the authentication method is unknown
	ErrUnknownAuthMethod = errors.New("ldap: unknown authentication method")
	// ErrInvalidSASLCredentials is returned when SASL credentials are malformed
	ErrInvalidSASLCredentials = errors.New("ldap: invalid SASL credentials")
)

// SASLCredentials carries a SASL mechanism and its optional credentials.
//
//	SaslCredentials ::= SEQUENCE {
//	    mechanism               LDAPString,
//	    credentials             OCTET STRING OPTIONAL }
type SASLCredentials struct {
	Mechanism   string
	Credentials []byte
}

// BindRequest authenticates a connection.
//
//	BindRequest ::= [APPLICATION 0] SEQUENCE {
//	    version                 INTEGER (1 .. 127),
//	    name                    LDAPDN,
//	    authentication          AuthenticationChoice }
type BindRequest struct {
	Version         int
	Name            string
	AuthMethod      AuthMethod
	SimplePassword  []byte
	SASLCredentials *SASLCredentials
}

// NewSimpleBindRequest creates a version 3 simple bind.
func NewSimpleBindRequest(dn string, password []byte) *BindRequest {
	return &BindRequest{
		Version:        3,
		Name:           dn,
		AuthMethod:     AuthMethodSimple,
		SimplePassword: password,
	}
}

// IsAnonymous reports whether the request is an anonymous simple bind.
func (r *BindRequest) IsAnonymous() bool {
	return r.Name == "" && r.AuthMethod == AuthMethodSimple && len(r.SimplePassword) == 0
}

// Encode returns the content octets of the request.
func (r *BindRequest) Encode() ([]byte, error) {
	encoder := ber.NewBEREncoder(64 + len(r.Name) + len(r.SimplePassword))

	if err := encoder.WriteInteger(int64(r.Version)); err != nil {
		return nil, err
	}
	if err := encoder.WriteOctetString([]byte(r.Name)); err != nil {
		return nil, err
	}

	switch r.AuthMethod {
	case AuthMethodSimple:
		if err := encoder.WriteTaggedValue(AuthSimple, false, r.SimplePassword); err != nil {
			return nil, err
		}
	case AuthMethodSASL:
		if err := encodeSASLCredentials(encoder, r.SASLCredentials); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnknownAuthMethod
	}

	return encoder.Bytes(), nil
}

// Message wraps the request in an LDAPMessage with the given id.
func (r *BindRequest) Message(messageID int) (*LDAPMessage, error) {
	data, err := r.Encode()
	if err != nil {
		return nil, err
	}
	return &LDAPMessage{
		MessageID: messageID,
		Operation: &RawOperation{Tag: ApplicationBindRequest, Data: data},
	}, nil
}

func encodeSASLCredentials(encoder *ber.BEREncoder, creds *SASLCredentials) error {
	if creds == nil {
		return ErrInvalidSASLCredentials
	}
	pos := encoder.WriteContextTag(AuthSASL, true)
	if err := encoder.WriteOctetString([]byte(creds.Mechanism)); err != nil {
		return err
	}
	if creds.Credentials != nil {
		if err := encoder.WriteOctetString(creds.Credentials); err != nil {
			return err
		}
	}
	return encoder.EndContextTag(pos)
}

// ParseBindRequest parses the content octets of a BindRequest.
func ParseBindRequest(data []byte) (*BindRequest, error) {
	if len(data) == 0 {
		return nil, NewParseError(0, "empty bind request data", nil)
	}

	decoder := ber.NewBERDecoder(data)

	version, err := decoder.ReadInteger()
	if err != nil {
		return nil, NewParseError(decoder.Offset(), "failed to read bind version", err)
	}
	if version < 1 || version > 127 {
		return nil, ErrInvalidBindVersion
	}

	name, err := decoder.ReadOctetString()
	if err != nil {
		return nil, NewParseError(decoder.Offset(), "failed to read bind name", err)
	}
	req := &BindRequest{Version: int(version), Name: string(name)}

	tagNum, constructed, authData, err := decoder.ReadTaggedValue()
	if err != nil {
		return nil, NewParseError(decoder.Offset(), "failed to read authentication", err)
	}

	switch tagNum {
	case AuthSimple:
		req.AuthMethod = AuthMethodSimple
		req.SimplePassword = authData
	case AuthSASL:
		if !constructed {
			return nil, NewParseError(decoder.Offset(), "SASL credentials must be constructed", ErrInvalidSASLCredentials)
		}
		creds, err := parseSASLCredentials(authData)
		if err != nil {
			return nil, NewParseError(decoder.Offset(), "failed to read SASL credentials", err)
		}
		req.AuthMethod = AuthMethodSASL
		req.SASLCredentials = creds
	default:
		return nil, NewParseError(decoder.Offset(), "unknown authentication method tag", ErrUnknownAuthMethod)
	}

	return req, nil
}

func parseSASLCredentials(data []byte) (*SASLCredentials, error) {
	decoder := ber.NewBERDecoder(data)
	mech, err := decoder.ReadOctetString()
	if err != nil {
		return nil, err
	}
	creds := &SASLCredentials{Mechanism: string(mech)}
	if decoder.Remaining() > 0 {
		if creds.Credentials, err = decoder.ReadOctetString(); err != nil {
			return nil, err
		}
	}
	return creds, nil
}

// UnbindRequest ends a session.
//
//	UnbindRequest ::= [APPLICATION 2] NULL
type UnbindRequest struct{}

// Encode returns the empty content of the NULL operation.
func (r *UnbindRequest) Encode() ([]byte, error) {
	return []byte{}, nil
}

// Message wraps the request in an LDAPMessage with the given id.
func (r *UnbindRequest) Message(messageID int) *LDAPMessage {
	return &LDAPMessage{
		MessageID: messageID,
		Operation: &RawOperation{Tag: ApplicationUnbindRequest, Data: []byte{}},
	}
}
