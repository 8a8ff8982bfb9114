// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
//
// This package provides the envelope types that protocol extensions travel
// in: controls attached to any message and the extended request and
// response pair. Typed codecs in sibling packages convert between these
// envelopes and their own records.
//
// # Message Structure
//
// All LDAP messages follow the LDAPMessage envelope structure:
//
//	LDAPMessage ::= SEQUENCE {
//	    messageID       MessageID,
//	    protocolOp      CHOICE { ... },
//	    controls        [0] Controls OPTIONAL
//	}
//
// Use ParseLDAPMessage to decode incoming messages:
//
//	msg, err := ldap.ParseLDAPMessage(data)
//	if err != nil {
//	    // handle error
//	}
//	switch msg.OperationType() {
//	case ldap.ApplicationExtendedResponse:
//	    res, err := ldap.ParseExtendedResponse(msg.Operation.Data)
//	    // handle extended result
//	}
//
// # Decoder Registry
//
// Typed codecs register a decoder for their OID from init:
//
//	func init() {
//	    ldap.RegisterControlDecoder(MyControlOID, func(c ldap.Control) (any, error) {
//	        return DecodeMyControl(c)
//	    })
//	}
//
// DecodeControls then attaches typed values to every recognized envelope,
// and typed getters return the attached value without decoding again.
//
// # Decode Errors
//
// Value decoding failures are *ValueError values matching ErrMissingValue
// or ErrMalformedValue:
//
//	if errors.Is(err, ldap.ErrMissingValue) {
//	    // the control had no value
//	}
//
// # References
//
//   - RFC 4511: LDAP Protocol
//   - RFC 5805: LDAP Transactions
package ldap
