package ber

import "fmt"

// Element is a single decoded TLV: its identifier fields and content octets.
type Element struct {
	Class       int
	Constructed int
	Number      int
	Value       []byte
}

// NewOctetStringElement returns a universal OCTET STRING element.
func NewOctetStringElement(v []byte) Element {
	return Element{Class: ClassUniversal, Constructed: TypePrimitive, Number: TagOctetString, Value: v}
}

// NewBooleanElement returns a universal BOOLEAN element.
func NewBooleanElement(v bool) Element {
	content := []byte{0x00}
	if v {
		content[0] = 0xFF
	}
	return Element{Class: ClassUniversal, Constructed: TypePrimitive, Number: TagBoolean, Value: content}
}

// NewIntegerElement returns an INTEGER element under the given class and
// number, so it also serves implicitly tagged integers such as "[0] INTEGER".
func NewIntegerElement(class, number int, v int64) Element {
	return Element{Class: class, Constructed: TypePrimitive, Number: number, Value: encodeInteger(v)}
}

// IsConstructed reports whether the element has the constructed bit set.
func (e Element) IsConstructed() bool {
	return e.Constructed == TypeConstructed
}

// Identifier returns the single-octet identifier for tag numbers up to 30.
// Long form tag numbers return the 0x1F escape form.
func (e Element) Identifier() byte {
	if e.Number > 30 {
		return byte(e.Class) | byte(e.Constructed) | 0x1F
	}
	return byte(e.Class) | byte(e.Constructed) | byte(e.Number)
}

// Is reports whether the element carries the given class, form and number.
func (e Element) Is(class, constructed, number int) bool {
	return e.Class == class && e.Constructed == constructed && e.Number == number
}

func (e Element) mismatch(class, number int) error {
	return &TagMismatchError{
		ExpectedClass:     class,
		ExpectedNumber:    number,
		ActualClass:       e.Class,
		ActualNumber:      e.Number,
		ActualConstructed: e.Constructed,
	}
}

// AsBoolean interprets a universal BOOLEAN element.
func (e Element) AsBoolean() (bool, error) {
	if !e.Is(ClassUniversal, TypePrimitive, TagBoolean) {
		return false, e.mismatch(ClassUniversal, TagBoolean)
	}
	return decodeBoolean(e.Value)
}

// AsOctetString interprets a universal OCTET STRING element. The returned
// slice is never nil.
func (e Element) AsOctetString() ([]byte, error) {
	if !e.Is(ClassUniversal, TypePrimitive, TagOctetString) {
		return nil, e.mismatch(ClassUniversal, TagOctetString)
	}
	out := make([]byte, len(e.Value))
	copy(out, e.Value)
	return out, nil
}

// AsInteger interprets the content octets of any primitive element as a
// two's complement integer. The tag is not checked, which lets callers
// decode implicitly tagged integers after dispatching on Identifier.
func (e Element) AsInteger() (int64, error) {
	if e.IsConstructed() {
		return 0, fmt.Errorf("%w: constructed element cannot hold an integer", ErrInvalidInteger)
	}
	return decodeInteger(e.Value)
}

// Elements decodes the content of a constructed element as a list of
// child elements.
func (e Element) Elements() ([]Element, error) {
	if !e.IsConstructed() {
		return nil, ErrNotConstructed
	}
	return DecodeElements(e.Value)
}

// Encode returns the full TLV encoding of the element.
func (e Element) Encode() ([]byte, error) {
	enc := NewBEREncoder(len(e.Value) + 6)
	if err := enc.WriteElement(e); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// DecodeElements decodes a concatenation of TLVs, such as the content of
// a SEQUENCE.
func DecodeElements(data []byte) ([]Element, error) {
	d := NewBERDecoder(data)
	var elements []Element
	for d.Remaining() > 0 {
		el, err := d.ReadElement()
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return elements, nil
}

// DecodeSequence decodes data that must consist of exactly one SEQUENCE
// and returns its children.
func DecodeSequence(data []byte) ([]Element, error) {
	d := NewBERDecoder(data)
	length, err := d.ExpectSequence()
	if err != nil {
		return nil, err
	}
	if d.Offset()+length != len(data) {
		return nil, NewDecodeError(d.Offset()+length, "sequence must span the whole value", ErrTrailingData)
	}
	return DecodeElements(data[d.Offset():])
}

// EncodeSequence encodes the given elements as one SEQUENCE.
func EncodeSequence(elements ...Element) ([]byte, error) {
	enc := NewBEREncoder(64)
	pos := enc.BeginSequence()
	for _, el := range elements {
		if err := enc.WriteElement(el); err != nil {
			return nil, err
		}
	}
	if err := enc.EndSequence(pos); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}
