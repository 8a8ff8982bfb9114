package ber

// BERDecoder decodes ASN.1 values using BER (Basic Encoding Rules).
type BERDecoder struct {
	data   []byte
	offset int
}

// NewBERDecoder creates a new BER decoder for the given data.
func NewBERDecoder(data []byte) *BERDecoder {
	return &BERDecoder{data: data}
}

// Offset returns the current read position in the data.
func (d *BERDecoder) Offset() int {
	return d.offset
}

// Remaining returns the number of bytes remaining to be read.
func (d *BERDecoder) Remaining() int {
	return len(d.data) - d.offset
}

// SetOffset sets the current read position.
func (d *BERDecoder) SetOffset(offset int) {
	d.offset = offset
}

// ReadTag reads a BER identifier from the current position.
// Returns the tag class, constructed flag, and tag number.
func (d *BERDecoder) ReadTag() (class, constructed, number int, err error) {
	startOffset := d.offset

	if d.offset >= len(d.data) {
		return 0, 0, 0, NewDecodeError(startOffset, "cannot read tag", ErrUnexpectedEOF)
	}

	first := d.data[d.offset]
	d.offset++

	class = int(first & 0xC0)
	constructed = int(first & 0x20)
	number = int(first & 0x1F)

	if number == 0x1F {
		number, err = d.readBase128()
		if err != nil {
			return 0, 0, 0, NewDecodeError(startOffset, "cannot read long form tag number", err)
		}
	}

	return class, constructed, number, nil
}

// readBase128 reads a base-128 encoded integer (used for long form tags).
func (d *BERDecoder) readBase128() (int, error) {
	result := 0
	for {
		if d.offset >= len(d.data) {
			return 0, ErrUnexpectedEOF
		}
		if result > (1 << 24) {
			return 0, ErrInvalidLength
		}

		b := d.data[d.offset]
		d.offset++
		result = (result << 7) | int(b&0x7F)

		if b&0x80 == 0 {
			return result, nil
		}
	}
}

// ReadLength reads a BER length value from the current position.
func (d *BERDecoder) ReadLength() (int, error) {
	startOffset := d.offset

	if d.offset >= len(d.data) {
		return 0, NewDecodeError(startOffset, "cannot read length", ErrUnexpectedEOF)
	}

	first := d.data[d.offset]
	d.offset++

	if first&LengthLongFormBit == 0 {
		return int(first), nil
	}

	numBytes := int(first & 0x7F)
	if numBytes == 0 {
		return 0, NewDecodeError(startOffset, "indefinite length encoding", ErrIndefiniteLength)
	}
	if numBytes > 4 {
		return 0, NewDecodeError(startOffset, "length value overflow", ErrInvalidLength)
	}
	if d.offset+numBytes > len(d.data) {
		return 0, NewDecodeError(startOffset, "truncated length encoding", ErrUnexpectedEOF)
	}

	length := 0
	for i := 0; i < numBytes; i++ {
		length = (length << 8) | int(d.data[d.offset])
		d.offset++
	}
	if length < 0 {
		return 0, NewDecodeError(startOffset, "length value overflow", ErrInvalidLength)
	}

	return length, nil
}

// readHeader reads an identifier and length and checks that the content is
// fully present. It returns the content bounds.
func (d *BERDecoder) readHeader() (class, constructed, number, length int, err error) {
	startOffset := d.offset

	class, constructed, number, err = d.ReadTag()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	length, err = d.ReadLength()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	if d.offset+length > len(d.data) {
		return 0, 0, 0, 0, NewDecodeError(startOffset, "truncated value", ErrUnexpectedEOF)
	}
	return class, constructed, number, length, nil
}

// readPrimitive reads a primitive TLV with the given class and number and
// returns its content octets (aliasing the input).
func (d *BERDecoder) readPrimitive(expectedClass, expectedNumber int) ([]byte, error) {
	startOffset := d.offset

	class, constructed, number, length, err := d.readHeader()
	if err != nil {
		return nil, err
	}
	if class != expectedClass || constructed != TypePrimitive || number != expectedNumber {
		d.offset = startOffset
		return nil, &TagMismatchError{
			Offset:            startOffset,
			ExpectedClass:     expectedClass,
			ExpectedNumber:    expectedNumber,
			ActualClass:       class,
			ActualNumber:      number,
			ActualConstructed: constructed,
		}
	}

	content := d.data[d.offset : d.offset+length]
	d.offset += length
	return content, nil
}

// ReadBoolean reads a BER-encoded boolean value.
func (d *BERDecoder) ReadBoolean() (bool, error) {
	startOffset := d.offset
	content, err := d.readPrimitive(ClassUniversal, TagBoolean)
	if err != nil {
		return false, err
	}
	v, err := decodeBoolean(content)
	if err != nil {
		return false, NewDecodeError(startOffset, "boolean must have length 1", err)
	}
	return v, nil
}

// ReadInteger reads a BER-encoded integer value.
func (d *BERDecoder) ReadInteger() (int64, error) {
	return d.readIntegerAs(ClassUniversal, TagInteger)
}

// ReadEnumerated reads a BER-encoded enumerated value.
func (d *BERDecoder) ReadEnumerated() (int64, error) {
	return d.readIntegerAs(ClassUniversal, TagEnumerated)
}

// ReadIntegerWithTag reads an integer value with a specific context tag.
func (d *BERDecoder) ReadIntegerWithTag(expectedTag int) (int64, error) {
	return d.readIntegerAs(ClassContextSpecific, expectedTag)
}

func (d *BERDecoder) readIntegerAs(class, number int) (int64, error) {
	startOffset := d.offset
	content, err := d.readPrimitive(class, number)
	if err != nil {
		return 0, err
	}
	v, err := decodeInteger(content)
	if err != nil {
		return 0, NewDecodeError(startOffset, "malformed integer", err)
	}
	return v, nil
}

// ReadOctetString reads a BER-encoded octet string. The returned slice is a
// copy and never nil, so an empty value is distinguishable from an absent one.
func (d *BERDecoder) ReadOctetString() ([]byte, error) {
	content, err := d.readPrimitive(ClassUniversal, TagOctetString)
	if err != nil {
		return nil, err
	}
	value := make([]byte, len(content))
	copy(value, content)
	return value, nil
}

// ReadNull reads a BER-encoded null value.
func (d *BERDecoder) ReadNull() error {
	startOffset := d.offset
	content, err := d.readPrimitive(ClassUniversal, TagNull)
	if err != nil {
		return err
	}
	if len(content) != 0 {
		return NewDecodeError(startOffset, "null must have length 0", ErrInvalidNull)
	}
	return nil
}

// PeekTag reads a tag without advancing the offset.
func (d *BERDecoder) PeekTag() (class, constructed, number int, err error) {
	savedOffset := d.offset
	class, constructed, number, err = d.ReadTag()
	d.offset = savedOffset
	return
}

// Skip skips the current TLV (Tag-Length-Value) element.
func (d *BERDecoder) Skip() error {
	_, _, _, length, err := d.readHeader()
	if err != nil {
		return err
	}
	d.offset += length
	return nil
}

// ReadElement reads the next TLV as an Element. The element's value is a
// copy of the content octets.
func (d *BERDecoder) ReadElement() (Element, error) {
	class, constructed, number, length, err := d.readHeader()
	if err != nil {
		return Element{}, err
	}
	value := make([]byte, length)
	copy(value, d.data[d.offset:d.offset+length])
	d.offset += length
	return Element{Class: class, Constructed: constructed, Number: number, Value: value}, nil
}

// ReadTaggedValue reads a context-specific tagged value.
// Returns the tag number and the raw value bytes.
func (d *BERDecoder) ReadTaggedValue() (tagNumber int, constructed bool, value []byte, err error) {
	startOffset := d.offset

	el, err := d.ReadElement()
	if err != nil {
		return 0, false, nil, err
	}
	if el.Class != ClassContextSpecific {
		d.offset = startOffset
		return 0, false, nil, &TagMismatchError{
			Offset:            startOffset,
			ExpectedClass:     ClassContextSpecific,
			ExpectedNumber:    -1,
			ActualClass:       el.Class,
			ActualNumber:      el.Number,
			ActualConstructed: el.Constructed,
		}
	}
	return el.Number, el.IsConstructed(), el.Value, nil
}

// expectConstructed reads the header of a constructed value with the given
// class and number and returns its content length.
func (d *BERDecoder) expectConstructed(expectedClass, expectedNumber int, anyForm bool) (int, error) {
	startOffset := d.offset

	class, constructed, number, length, err := d.readHeader()
	if err != nil {
		return 0, err
	}
	if class != expectedClass || number != expectedNumber || (!anyForm && constructed != TypeConstructed) {
		d.offset = startOffset
		return 0, &TagMismatchError{
			Offset:            startOffset,
			ExpectedClass:     expectedClass,
			ExpectedNumber:    expectedNumber,
			ActualClass:       class,
			ActualNumber:      number,
			ActualConstructed: constructed,
		}
	}
	return length, nil
}

// ExpectSequence reads and validates a SEQUENCE header, returning the content length.
// The caller should read exactly 'length' bytes of content after this call.
func (d *BERDecoder) ExpectSequence() (int, error) {
	return d.expectConstructed(ClassUniversal, TagSequence, false)
}

// ExpectContextTag reads and validates a context-specific header with the
// given number, in either form. Returns the content length.
func (d *BERDecoder) ExpectContextTag(num int) (int, error) {
	return d.expectConstructed(ClassContextSpecific, num, true)
}

// ExpectApplicationTag reads and validates an application header with the
// given number, in either form. Returns the content length.
func (d *BERDecoder) ExpectApplicationTag(num int) (int, error) {
	return d.expectConstructed(ClassApplication, num, true)
}

// IsContextTag checks if the next tag is a context-specific tag with the given number
// without consuming it.
func (d *BERDecoder) IsContextTag(num int) bool {
	class, _, number, err := d.PeekTag()
	return err == nil && class == ClassContextSpecific && number == num
}

// sub returns a decoder over the next length bytes and advances past them.
func (d *BERDecoder) sub(length int) *BERDecoder {
	contents := d.data[d.offset : d.offset+length]
	d.offset += length
	return NewBERDecoder(contents)
}

// ReadSequenceContents reads the contents of a SEQUENCE into a sub-decoder.
func (d *BERDecoder) ReadSequenceContents() (*BERDecoder, error) {
	length, err := d.ExpectSequence()
	if err != nil {
		return nil, err
	}
	return d.sub(length), nil
}

// ReadContextTagContents reads the contents of a context-specific tag into a sub-decoder.
func (d *BERDecoder) ReadContextTagContents(num int) (*BERDecoder, error) {
	length, err := d.ExpectContextTag(num)
	if err != nil {
		return nil, err
	}
	return d.sub(length), nil
}

// ReadApplicationTagContents reads the contents of an application tag into a sub-decoder.
func (d *BERDecoder) ReadApplicationTagContents(num int) (*BERDecoder, error) {
	length, err := d.ExpectApplicationTag(num)
	if err != nil {
		return nil, err
	}
	return d.sub(length), nil
}

func decodeBoolean(content []byte) (bool, error) {
	if len(content) != 1 {
		return false, ErrInvalidBoolean
	}
	// Per X.690, FALSE is 0x00, TRUE is any non-zero value
	return content[0] != 0x00, nil
}

// decodeInteger decodes a two's complement big-endian integer.
func decodeInteger(content []byte) (int64, error) {
	if len(content) == 0 || len(content) > 8 {
		return 0, ErrInvalidInteger
	}

	var result int64
	if content[0]&0x80 != 0 {
		result = -1
	}
	for _, b := range content {
		result = (result << 8) | int64(b)
	}
	return result, nil
}
