package ber

import (
	"errors"
)

// Errors returned by the encoder
var (
	ErrInvalidTagClass  = errors.New("ber: invalid tag class")
	ErrInvalidTagNumber = errors.New("ber: invalid tag number")
	ErrLengthOverflow   = errors.New("ber: length value overflow")
	ErrNegativeLength   = errors.New("ber: negative length not allowed")
)

// BEREncoder encodes ASN.1 values using BER (Basic Encoding Rules).
// Output is definite-length and minimal, so equal inputs always encode to
// equal bytes.
type BEREncoder struct {
	buf []byte
}

// NewBEREncoder creates a new BER encoder with an optional initial capacity.
func NewBEREncoder(capacity int) *BEREncoder {
	if capacity <= 0 {
		capacity = 64
	}
	return &BEREncoder{
		buf: make([]byte, 0, capacity),
	}
}

// Bytes returns the encoded bytes.
func (e *BEREncoder) Bytes() []byte {
	return e.buf
}

// Reset clears the encoder buffer for reuse.
func (e *BEREncoder) Reset() {
	e.buf = e.buf[:0]
}

// Len returns the current length of encoded data.
func (e *BEREncoder) Len() int {
	return len(e.buf)
}

// WriteTag writes a BER identifier.
// class: ClassUniversal, ClassApplication, ClassContextSpecific, or ClassPrivate
// constructed: TypePrimitive or TypeConstructed
// number: tag number (0-30 for short form, >30 for long form)
func (e *BEREncoder) WriteTag(class, constructed, number int) error {
	switch class {
	case ClassUniversal, ClassApplication, ClassContextSpecific, ClassPrivate:
	default:
		return ErrInvalidTagClass
	}
	if number < 0 {
		return ErrInvalidTagNumber
	}

	if number <= 30 {
		e.buf = append(e.buf, byte(class)|byte(constructed)|byte(number))
		return nil
	}

	// Long form: low five bits all set, number follows in base-128
	e.buf = append(e.buf, byte(class)|byte(constructed)|0x1F)
	e.writeBase128(number)
	return nil
}

// writeBase128 encodes an integer in base-128 format (high bit indicates continuation)
func (e *BEREncoder) writeBase128(value int) {
	var groups [5]byte
	n := 0
	for {
		groups[n] = byte(value & 0x7F)
		n++
		value >>= 7
		if value == 0 {
			break
		}
	}
	for i := n - 1; i >= 0; i-- {
		b := groups[i]
		if i > 0 {
			b |= 0x80
		}
		e.buf = append(e.buf, b)
	}
}

// WriteLength writes a BER length value to the buffer.
// Uses short form for lengths 0-127, long form for larger values.
func (e *BEREncoder) WriteLength(length int) error {
	encoded, err := encodeLength(length)
	if err != nil {
		return err
	}
	e.buf = append(e.buf, encoded...)
	return nil
}

// encodeLength returns the definite-form encoding of length.
func encodeLength(length int) ([]byte, error) {
	if length < 0 {
		return nil, ErrNegativeLength
	}
	if length <= MaxShortFormLength {
		return []byte{byte(length)}, nil
	}

	numBytes := 0
	for temp := length; temp > 0; temp >>= 8 {
		numBytes++
	}
	if numBytes > 4 {
		return nil, ErrLengthOverflow
	}

	out := make([]byte, 1+numBytes)
	out[0] = byte(LengthLongFormBit | numBytes)
	for i := 0; i < numBytes; i++ {
		out[numBytes-i] = byte(length >> (8 * i))
	}
	return out, nil
}

// writePrimitive writes a complete primitive TLV.
func (e *BEREncoder) writePrimitive(class, number int, content []byte) error {
	if err := e.WriteTag(class, TypePrimitive, number); err != nil {
		return err
	}
	if err := e.WriteLength(len(content)); err != nil {
		return err
	}
	e.buf = append(e.buf, content...)
	return nil
}

// WriteBoolean writes a BER-encoded boolean value.
// Per X.690, FALSE is encoded as 0x00, TRUE as any non-zero value (we use 0xFF).
func (e *BEREncoder) WriteBoolean(v bool) error {
	content := []byte{0x00}
	if v {
		content[0] = 0xFF
	}
	return e.writePrimitive(ClassUniversal, TagBoolean, content)
}

// WriteInteger writes a BER-encoded integer value.
// Uses the minimum number of octets with two's complement representation.
func (e *BEREncoder) WriteInteger(v int64) error {
	return e.writePrimitive(ClassUniversal, TagInteger, encodeInteger(v))
}

// WriteTaggedInteger writes an integer under an implicit context-specific
// primitive tag, as in "[0] INTEGER".
func (e *BEREncoder) WriteTaggedInteger(tagNumber int, v int64) error {
	return e.writePrimitive(ClassContextSpecific, tagNumber, encodeInteger(v))
}

// encodeInteger encodes an int64 as a minimal two's complement byte slice.
func encodeInteger(v int64) []byte {
	var full [8]byte
	for i := 0; i < 8; i++ {
		full[7-i] = byte(v >> (8 * i))
	}

	// Drop leading octets that only repeat the sign bit of the next octet.
	start := 0
	for start < 7 {
		b, next := full[start], full[start+1]
		if (b == 0x00 && next&0x80 == 0) || (b == 0xFF && next&0x80 != 0) {
			start++
			continue
		}
		break
	}

	out := make([]byte, 8-start)
	copy(out, full[start:])
	return out
}

// WriteOctetString writes a BER-encoded octet string.
func (e *BEREncoder) WriteOctetString(v []byte) error {
	return e.writePrimitive(ClassUniversal, TagOctetString, v)
}

// WriteEnumerated writes a BER-encoded enumerated value.
// Enumerated values are encoded identically to integers.
func (e *BEREncoder) WriteEnumerated(v int64) error {
	return e.writePrimitive(ClassUniversal, TagEnumerated, encodeInteger(v))
}

// WriteNull writes a BER-encoded null value.
func (e *BEREncoder) WriteNull() error {
	return e.writePrimitive(ClassUniversal, TagNull, nil)
}

// WriteRaw writes raw bytes directly to the buffer.
// Useful for pre-encoded data or custom encoding.
func (e *BEREncoder) WriteRaw(data []byte) {
	e.buf = append(e.buf, data...)
}

// WriteTaggedValue writes a context-specific tagged value.
// This is commonly used in LDAP for protocol-specific fields.
func (e *BEREncoder) WriteTaggedValue(tagNumber int, constructed bool, value []byte) error {
	constructedFlag := TypePrimitive
	if constructed {
		constructedFlag = TypeConstructed
	}

	if err := e.WriteTag(ClassContextSpecific, constructedFlag, tagNumber); err != nil {
		return err
	}
	if err := e.WriteLength(len(value)); err != nil {
		return err
	}
	e.buf = append(e.buf, value...)
	return nil
}

// WriteElement writes a previously decoded or hand-built element.
func (e *BEREncoder) WriteElement(el Element) error {
	if err := e.WriteTag(el.Class, el.Constructed, el.Number); err != nil {
		return err
	}
	if err := e.WriteLength(len(el.Value)); err != nil {
		return err
	}
	e.buf = append(e.buf, el.Value...)
	return nil
}
