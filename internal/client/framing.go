package client

import (
	"bufio"
	"io"

	"github.com/KilimcininKorOglu/obasdk/internal/ber"
	"github.com/KilimcininKorOglu/obasdk/internal/ldap"
)

// readMessage reads one BER-framed LDAP message.
func readMessage(r *bufio.Reader, maxSize int) (*ldap.LDAPMessage, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	// Verify it's a SEQUENCE tag (0x30)
	if tag != byte(ber.ClassUniversal|ber.TypeConstructed|ber.TagSequence) {
		return nil, ErrInvalidMessage
	}

	length, lengthBytes, err := readLength(r)
	if err != nil {
		return nil, err
	}
	if length > maxSize {
		return nil, ErrMessageTooLarge
	}

	full := make([]byte, 1+len(lengthBytes)+length)
	full[0] = tag
	copy(full[1:], lengthBytes)
	if _, err := io.ReadFull(r, full[1+len(lengthBytes):]); err != nil {
		return nil, err
	}

	return ldap.ParseLDAPMessage(full)
}

// readLength reads a definite BER length and returns it with its raw bytes.
func readLength(r *bufio.Reader) (int, []byte, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}

	// Short form: bit 8 is 0, bits 1-7 contain the length
	if first&ber.LengthLongFormBit == 0 {
		return int(first), []byte{first}, nil
	}

	// Long form: bits 1-7 contain the number of subsequent length bytes.
	// Indefinite length (0x80) is not allowed in LDAP.
	numBytes := int(first & 0x7F)
	if numBytes == 0 || numBytes > 4 {
		return 0, nil, ErrInvalidMessage
	}

	raw := make([]byte, 1+numBytes)
	raw[0] = first
	if _, err := io.ReadFull(r, raw[1:]); err != nil {
		return 0, nil, err
	}

	length := 0
	for _, b := range raw[1:] {
		length = (length << 8) | int(b)
	}
	if length < 0 {
		return 0, nil, ErrInvalidMessage
	}
	return length, raw, nil
}
