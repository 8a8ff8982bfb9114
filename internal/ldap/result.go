package ldap

import (
	"fmt"

	"github.com/KilimcininKorOglu/obasdk/internal/ber"
)

// Context-specific tags for response fields
const (
	// ContextTagReferral is the tag for referral URIs in LDAPResult [3]
	ContextTagReferral = 3
	// ContextTagServerSASLCreds is the tag for server SASL credentials in BindResponse [7]
	ContextTagServerSASLCreds = 7
)

// LDAPResult represents the common result structure used in most LDAP responses.
// Per RFC 4511 Section 4.1.9:
// LDAPResult ::= SEQUENCE {
//
//	resultCode         ENUMERATED { ... },
//	matchedDN          LDAPDN,
//	diagnosticMessage  LDAPString,
//	referral           [3] Referral OPTIONAL
//
// }
type LDAPResult struct {
	// ResultCode indicates the outcome of the operation
	ResultCode ResultCode
	// MatchedDN contains the DN of the last entry matched during processing
	MatchedDN string
	// DiagnosticMessage contains additional diagnostic information
	DiagnosticMessage string
	// Referral contains URIs to other servers (optional)
	Referral []string
}

// Encode writes the LDAPResult components (without outer tag).
func (r *LDAPResult) Encode(encoder *ber.BEREncoder) error {
	if err := encoder.WriteEnumerated(int64(r.ResultCode)); err != nil {
		return err
	}
	if err := encoder.WriteOctetString([]byte(r.MatchedDN)); err != nil {
		return err
	}
	if err := encoder.WriteOctetString([]byte(r.DiagnosticMessage)); err != nil {
		return err
	}

	if len(r.Referral) > 0 {
		refPos := encoder.WriteContextTag(ContextTagReferral, true)
		for _, uri := range r.Referral {
			if err := encoder.WriteOctetString([]byte(uri)); err != nil {
				return err
			}
		}
		if err := encoder.EndContextTag(refPos); err != nil {
			return err
		}
	}

	return nil
}

// parseLDAPResult reads the LDAPResult components from the decoder, leaving
// any response-specific trailing fields unread.
func parseLDAPResult(decoder *ber.BERDecoder) (LDAPResult, error) {
	var r LDAPResult

	code, err := decoder.ReadEnumerated()
	if err != nil {
		return r, NewParseError(decoder.Offset(), "failed to read resultCode", err)
	}
	r.ResultCode = ResultCode(code)

	matched, err := decoder.ReadOctetString()
	if err != nil {
		return r, NewParseError(decoder.Offset(), "failed to read matchedDN", err)
	}
	r.MatchedDN = string(matched)

	diag, err := decoder.ReadOctetString()
	if err != nil {
		return r, NewParseError(decoder.Offset(), "failed to read diagnosticMessage", err)
	}
	r.DiagnosticMessage = string(diag)

	if decoder.IsContextTag(ContextTagReferral) {
		refDecoder, err := decoder.ReadContextTagContents(ContextTagReferral)
		if err != nil {
			return r, NewParseError(decoder.Offset(), "failed to read referral", err)
		}
		for refDecoder.Remaining() > 0 {
			uri, err := refDecoder.ReadOctetString()
			if err != nil {
				return r, NewParseError(decoder.Offset(), "failed to read referral URI", err)
			}
			r.Referral = append(r.Referral, string(uri))
		}
	}

	return r, nil
}

// String returns a short description of the result.
func (r LDAPResult) String() string {
	if r.DiagnosticMessage != "" {
		return fmt.Sprintf("%s (%d): %s", r.ResultCode, int(r.ResultCode), r.DiagnosticMessage)
	}
	return fmt.Sprintf("%s (%d)", r.ResultCode, int(r.ResultCode))
}

// BindResponse represents an LDAP Bind response.
// Per RFC 4511 Section 4.2.2:
// BindResponse ::= [APPLICATION 1] SEQUENCE {
//
//	COMPONENTS OF LDAPResult,
//	serverSaslCreds    [7] OCTET STRING OPTIONAL
//
// }
type BindResponse struct {
	// LDAPResult contains the common result fields
	LDAPResult
	// ServerSASLCreds contains server SASL credentials (optional)
	ServerSASLCreds []byte
}

// ParseBindResponse parses a BindResponse from raw operation data.
func ParseBindResponse(data []byte) (*BindResponse, error) {
	decoder := ber.NewBERDecoder(data)
	result, err := parseLDAPResult(decoder)
	if err != nil {
		return nil, err
	}
	resp := &BindResponse{LDAPResult: result}

	if decoder.IsContextTag(ContextTagServerSASLCreds) {
		_, _, creds, err := decoder.ReadTaggedValue()
		if err != nil {
			return nil, NewParseError(decoder.Offset(), "failed to read serverSaslCreds", err)
		}
		resp.ServerSASLCreds = creds
	}

	return resp, nil
}

// Encode encodes the BindResponse to BER format (without the APPLICATION tag).
func (r *BindResponse) Encode() ([]byte, error) {
	encoder := ber.NewBEREncoder(128)

	if err := r.LDAPResult.Encode(encoder); err != nil {
		return nil, err
	}
	if r.ServerSASLCreds != nil {
		if err := encoder.WriteTaggedValue(ContextTagServerSASLCreds, false, r.ServerSASLCreds); err != nil {
			return nil, err
		}
	}

	return encoder.Bytes(), nil
}

// NewSuccessResult creates a successful LDAPResult.
func NewSuccessResult() LDAPResult {
	return LDAPResult{ResultCode: ResultSuccess}
}

// NewErrorResult creates an LDAPResult with the given code and message.
func NewErrorResult(code ResultCode, message string) LDAPResult {
	return LDAPResult{
		ResultCode:        code,
		DiagnosticMessage: message,
	}
}
