package ber

// Constructed values are written in two steps. Begin* emits the identifier
// and a one-octet length placeholder and returns the placeholder position;
// End* measures what was written since and patches the length in place,
// growing it to long form when the content needs it.

// BeginSequence starts a SEQUENCE and returns the position to pass to EndSequence.
func (e *BEREncoder) BeginSequence() int {
	return e.begin(ClassUniversal, TypeConstructed, TagSequence)
}

// EndSequence completes a SEQUENCE started with BeginSequence.
func (e *BEREncoder) EndSequence(pos int) error {
	return e.end(pos)
}

// BeginSet starts a SET and returns the position to pass to EndSet.
func (e *BEREncoder) BeginSet() int {
	return e.begin(ClassUniversal, TypeConstructed, TagSet)
}

// EndSet completes a SET started with BeginSet.
func (e *BEREncoder) EndSet(pos int) error {
	return e.end(pos)
}

// WriteContextTag starts a context-specific tagged value whose content is
// written by subsequent calls.
func (e *BEREncoder) WriteContextTag(number int, constructed bool) int {
	return e.begin(ClassContextSpecific, constructedFlag(constructed), number)
}

// EndContextTag completes a value started with WriteContextTag.
func (e *BEREncoder) EndContextTag(pos int) error {
	return e.end(pos)
}

// WriteApplicationTag starts an application tagged value whose content is
// written by subsequent calls.
func (e *BEREncoder) WriteApplicationTag(number int, constructed bool) int {
	return e.begin(ClassApplication, constructedFlag(constructed), number)
}

// EndApplicationTag completes a value started with WriteApplicationTag.
func (e *BEREncoder) EndApplicationTag(pos int) error {
	return e.end(pos)
}

func constructedFlag(constructed bool) int {
	if constructed {
		return TypeConstructed
	}
	return TypePrimitive
}

func (e *BEREncoder) begin(class, constructed, number int) int {
	// Class values come from package constants, so WriteTag cannot fail here.
	_ = e.WriteTag(class, constructed, number)
	pos := len(e.buf)
	e.buf = append(e.buf, 0x00)
	return pos
}

func (e *BEREncoder) end(pos int) error {
	if pos < 0 || pos >= len(e.buf) {
		return ErrInvalidLength
	}

	contentLen := len(e.buf) - pos - 1
	encoded, err := encodeLength(contentLen)
	if err != nil {
		return err
	}

	if len(encoded) == 1 {
		e.buf[pos] = encoded[0]
		return nil
	}

	// Make room for the extra length octets and shift the content right.
	extra := len(encoded) - 1
	e.buf = append(e.buf, make([]byte, extra)...)
	copy(e.buf[pos+len(encoded):], e.buf[pos+1:pos+1+contentLen])
	copy(e.buf[pos:], encoded)
	return nil
}
