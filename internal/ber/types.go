package ber

// Tag class constants (bits 7-8 of the identifier octet)
const (
	ClassUniversal       = 0x00
	ClassApplication     = 0x40
	ClassContextSpecific = 0x80
	ClassPrivate         = 0xC0
)

// Constructed flag (bit 6 of the identifier octet)
const (
	TypePrimitive   = 0x00
	TypeConstructed = 0x20
)

// Universal tag numbers
const (
	TagBoolean     = 0x01
	TagInteger     = 0x02
	TagOctetString = 0x04
	TagNull        = 0x05
	TagEnumerated  = 0x0A
	TagSequence    = 0x10
	TagSet         = 0x11
)

// Single-octet identifiers for the universal types that appear in LDAP
// extension values.
const (
	IdentifierBoolean     byte = ClassUniversal | TypePrimitive | TagBoolean
	IdentifierInteger     byte = ClassUniversal | TypePrimitive | TagInteger
	IdentifierOctetString byte = ClassUniversal | TypePrimitive | TagOctetString
	IdentifierSequence    byte = ClassUniversal | TypeConstructed | TagSequence
)

// Length encoding constants
const (
	// LengthLongFormBit indicates long form length encoding (bit 8 set)
	LengthLongFormBit = 0x80
	// MaxShortFormLength is the maximum length encodable in short form (0-127)
	MaxShortFormLength = 127
)

// ContextIdentifier returns the single-octet identifier of a primitive
// context-specific tag. Tag numbers above 30 need the long form and are not
// representable in one octet.
func ContextIdentifier(number int) byte {
	return byte(ClassContextSpecific|TypePrimitive) | byte(number&0x1F)
}
