package ldap

import (
	"fmt"
	"time"

	"github.com/KilimcininKorOglu/obasdk/internal/ber"
)

// Context-specific tags for extended operation fields
const (
	// ContextTagRequestName is the tag for requestName [0]
	ContextTagRequestName = 0
	// ContextTagRequestValue is the tag for requestValue [1]
	ContextTagRequestValue = 1
	// ContextTagResponseName is the tag for responseName [10]
	ContextTagResponseName = 10
	// ContextTagResponseValue is the tag for responseValue [11]
	ContextTagResponseValue = 11
)

// ExtendedRequest represents an LDAP Extended Request.
// Per RFC 4511 Section 4.12:
// ExtendedRequest ::= [APPLICATION 23] SEQUENCE {
//
//	requestName      [0] LDAPOID,
//	requestValue     [1] OCTET STRING OPTIONAL
//
// }
//
// Controls are sent in the message envelope. ResponseTimeout bounds the wait
// for the response; zero uses the connection default.
type ExtendedRequest struct {
	OID             string
	Value           []byte
	Controls        []Control
	ResponseTimeout time.Duration
}

// NewExtendedRequest creates an extended request envelope.
func NewExtendedRequest(oid string, value []byte, controls ...Control) *ExtendedRequest {
	return &ExtendedRequest{OID: oid, Value: value, Controls: controls}
}

// HasValue reports whether the request carries a value.
func (r *ExtendedRequest) HasValue() bool {
	return r.Value != nil
}

// ParseExtendedRequest parses an ExtendedRequest from raw operation data.
func ParseExtendedRequest(data []byte) (*ExtendedRequest, error) {
	if len(data) == 0 {
		return nil, NewParseError(0, "empty extended request data", nil)
	}

	decoder := ber.NewBERDecoder(data)
	req := &ExtendedRequest{}

	if !decoder.IsContextTag(ContextTagRequestName) {
		return nil, NewParseError(decoder.Offset(), "expected context tag [0] for requestName", nil)
	}
	_, _, oidBytes, err := decoder.ReadTaggedValue()
	if err != nil {
		return nil, NewParseError(decoder.Offset(), "failed to read requestName", err)
	}
	req.OID = string(oidBytes)

	if decoder.Remaining() > 0 && decoder.IsContextTag(ContextTagRequestValue) {
		_, _, value, err := decoder.ReadTaggedValue()
		if err != nil {
			return nil, NewParseError(decoder.Offset(), "failed to read requestValue", err)
		}
		req.Value = value
	}

	return req, nil
}

// Encode encodes the ExtendedRequest to BER format (without the APPLICATION tag).
func (r *ExtendedRequest) Encode() ([]byte, error) {
	if r.OID == "" {
		return nil, NewParseError(0, "extended request OID is empty", nil)
	}
	encoder := ber.NewBEREncoder(64 + len(r.Value))
	if err := encoder.WriteTaggedValue(ContextTagRequestName, false, []byte(r.OID)); err != nil {
		return nil, err
	}
	if r.HasValue() {
		if err := encoder.WriteTaggedValue(ContextTagRequestValue, false, r.Value); err != nil {
			return nil, err
		}
	}
	return encoder.Bytes(), nil
}

// Message wraps the request in an LDAPMessage with the given id.
func (r *ExtendedRequest) Message(messageID int) (*LDAPMessage, error) {
	data, err := r.Encode()
	if err != nil {
		return nil, err
	}
	return &LDAPMessage{
		MessageID: messageID,
		Operation: &RawOperation{Tag: ApplicationExtendedRequest, Data: data},
		Controls:  r.Controls,
	}, nil
}

// String returns a short description of the request.
func (r *ExtendedRequest) String() string {
	return fmt.Sprintf("ExtendedRequest(oid=%s, hasValue=%t, controls=%d)", r.OID, r.HasValue(), len(r.Controls))
}

// ExtendedResult represents an LDAP Extended Response.
// Per RFC 4511 Section 4.12:
// ExtendedResponse ::= [APPLICATION 24] SEQUENCE {
//
//	COMPONENTS OF LDAPResult,
//	responseName     [10] LDAPOID OPTIONAL,
//	responseValue    [11] OCTET STRING OPTIONAL
//
// }
type ExtendedResult struct {
	LDAPResult
	// MessageID is the id of the response message
	MessageID int
	// OID is the optional response name
	OID string
	// Value is the optional response value
	Value []byte
	// Controls are the response controls
	Controls []Control
}

// HasValue reports whether the result carries a value.
func (r *ExtendedResult) HasValue() bool {
	return r.Value != nil
}

// ParseExtendedResponse parses an ExtendedResponse from raw operation data.
func ParseExtendedResponse(data []byte) (*ExtendedResult, error) {
	decoder := ber.NewBERDecoder(data)
	result, err := parseLDAPResult(decoder)
	if err != nil {
		return nil, err
	}
	resp := &ExtendedResult{LDAPResult: result}

	if decoder.IsContextTag(ContextTagResponseName) {
		_, _, oid, err := decoder.ReadTaggedValue()
		if err != nil {
			return nil, NewParseError(decoder.Offset(), "failed to read responseName", err)
		}
		resp.OID = string(oid)
	}
	if decoder.IsContextTag(ContextTagResponseValue) {
		_, _, value, err := decoder.ReadTaggedValue()
		if err != nil {
			return nil, NewParseError(decoder.Offset(), "failed to read responseValue", err)
		}
		resp.Value = value
	}

	return resp, nil
}

// Encode encodes the ExtendedResult to BER format (without the APPLICATION tag).
func (r *ExtendedResult) Encode() ([]byte, error) {
	encoder := ber.NewBEREncoder(128)

	if err := r.LDAPResult.Encode(encoder); err != nil {
		return nil, err
	}
	if r.OID != "" {
		if err := encoder.WriteTaggedValue(ContextTagResponseName, false, []byte(r.OID)); err != nil {
			return nil, err
		}
	}
	if r.HasValue() {
		if err := encoder.WriteTaggedValue(ContextTagResponseValue, false, r.Value); err != nil {
			return nil, err
		}
	}

	return encoder.Bytes(), nil
}

// Message wraps the result in an LDAPMessage with the given id.
func (r *ExtendedResult) Message(messageID int) (*LDAPMessage, error) {
	data, err := r.Encode()
	if err != nil {
		return nil, err
	}
	return &LDAPMessage{
		MessageID: messageID,
		Operation: &RawOperation{Tag: ApplicationExtendedResponse, Data: data},
		Controls:  r.Controls,
	}, nil
}

// String returns a short description of the result.
func (r *ExtendedResult) String() string {
	return fmt.Sprintf("ExtendedResult(messageID=%d, result=%s, oid=%s, hasValue=%t, controls=%d)",
		r.MessageID, r.LDAPResult, r.OID, r.HasValue(), len(r.Controls))
}
