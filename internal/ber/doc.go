// Package ber implements the subset of ASN.1 BER (Basic Encoding Rules,
// ITU-T X.690) used by LDAP protocol extensions.
//
// The package has two halves. BEREncoder and BERDecoder are cursor based
// and mirror the order fields appear on the wire:
//
//	encoder := ber.NewBEREncoder(64)
//	pos := encoder.BeginSequence()
//	encoder.WriteOctetString([]byte("secret"))
//	encoder.WriteBoolean(false)
//	encoder.EndSequence(pos)
//	data := encoder.Bytes()
//
// Element is a decoded TLV held in memory. It suits structures whose shape
// is only known after counting or inspecting their children, such as a
// SEQUENCE whose first member is optional:
//
//	elements, err := ber.DecodeSequence(data)
//	if err != nil {
//	    // handle error
//	}
//	for _, e := range elements {
//	    switch e.Identifier() {
//	    case 0x80:
//	        secs, err := e.AsInteger()
//	        // ...
//	    }
//	}
//
// # Tag Classes
//
//   - Universal (0x00): INTEGER, BOOLEAN, OCTET STRING, SEQUENCE, ...
//   - Application (0x40): LDAP protocol operations
//   - Context-specific (0x80): fields local to the enclosing structure
//   - Private (0xC0): unused by LDAP
//
// # References
//
//   - ITU-T X.690: ASN.1 encoding rules
//   - RFC 4511: LDAP Protocol (uses BER encoding)
package ber
