package ber

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPrimitives(t *testing.T) {
	data := []byte{
		0x01, 0x01, 0x01, // BOOLEAN true (non-0xFF)
		0x02, 0x02, 0xFF, 0x7F, // INTEGER -129
		0x04, 0x00, // empty OCTET STRING
		0x0A, 0x01, 0x31, // ENUMERATED 49
		0x05, 0x00, // NULL
		0x82, 0x01, 0x07, // [2] INTEGER 7
	}
	dec := NewBERDecoder(data)

	b, err := dec.ReadBoolean()
	require.NoError(t, err)
	assert.True(t, b)

	i, err := dec.ReadInteger()
	require.NoError(t, err)
	assert.Equal(t, int64(-129), i)

	s, err := dec.ReadOctetString()
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Empty(t, s)

	e, err := dec.ReadEnumerated()
	require.NoError(t, err)
	assert.Equal(t, int64(49), e)

	require.NoError(t, dec.ReadNull())

	tagged, err := dec.ReadIntegerWithTag(2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), tagged)

	assert.Equal(t, 0, dec.Remaining())
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(*BERDecoder) error
		want error
	}{
		{
			name: "boolean wrong length",
			data: []byte{0x01, 0x02, 0x00, 0x00},
			read: func(d *BERDecoder) error { _, err := d.ReadBoolean(); return err },
			want: ErrInvalidBoolean,
		},
		{
			name: "integer empty",
			data: []byte{0x02, 0x00},
			read: func(d *BERDecoder) error { _, err := d.ReadInteger(); return err },
			want: ErrInvalidInteger,
		},
		{
			name: "integer too wide",
			data: []byte{0x02, 0x09, 1, 2, 3, 4, 5, 6, 7, 8, 9},
			read: func(d *BERDecoder) error { _, err := d.ReadInteger(); return err },
			want: ErrInvalidInteger,
		},
		{
			name: "truncated octet string",
			data: []byte{0x04, 0x05, 'a'},
			read: func(d *BERDecoder) error { _, err := d.ReadOctetString(); return err },
			want: ErrUnexpectedEOF,
		},
		{
			name: "tag mismatch",
			data: []byte{0x04, 0x01, 'a'},
			read: func(d *BERDecoder) error { _, err := d.ReadBoolean(); return err },
			want: ErrTagMismatch,
		},
		{
			name: "indefinite length",
			data: []byte{0x30, 0x80, 0x00, 0x00},
			read: func(d *BERDecoder) error { _, err := d.ExpectSequence(); return err },
			want: ErrIndefiniteLength,
		},
		{
			name: "empty input",
			data: nil,
			read: func(d *BERDecoder) error { _, err := d.ReadElement(); return err },
			want: ErrUnexpectedEOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewBERDecoder(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTagMismatchLeavesOffset(t *testing.T) {
	dec := NewBERDecoder([]byte{0x04, 0x01, 'x'})
	_, err := dec.ReadBoolean()
	require.Error(t, err)

	var mismatch *TagMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, TagOctetString, mismatch.ActualNumber)
	assert.Equal(t, 0, dec.Offset())

	s, err := dec.ReadOctetString()
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), s)
}

func TestPeekSkipAndTagged(t *testing.T) {
	data := []byte{0x30, 0x00, 0xA3, 0x03, 0x04, 0x01, 'u', 0x8B, 0x01, 0x09}
	dec := NewBERDecoder(data)

	class, constructed, number, err := dec.PeekTag()
	require.NoError(t, err)
	assert.Equal(t, ClassUniversal, class)
	assert.Equal(t, TypeConstructed, constructed)
	assert.Equal(t, TagSequence, number)
	assert.Equal(t, 0, dec.Offset())

	require.NoError(t, dec.Skip())
	assert.True(t, dec.IsContextTag(3))

	sub, err := dec.ReadContextTagContents(3)
	require.NoError(t, err)
	uri, err := sub.ReadOctetString()
	require.NoError(t, err)
	assert.Equal(t, []byte("u"), uri)

	tag, isConstructed, value, err := dec.ReadTaggedValue()
	require.NoError(t, err)
	assert.Equal(t, 11, tag)
	assert.False(t, isConstructed)
	assert.Equal(t, []byte{0x09}, value)
}

func TestApplicationContents(t *testing.T) {
	dec := NewBERDecoder([]byte{0x78, 0x03, 0x0A, 0x01, 0x00})
	sub, err := dec.ReadApplicationTagContents(24)
	require.NoError(t, err)
	code, err := sub.ReadEnumerated()
	require.NoError(t, err)
	assert.Equal(t, int64(0), code)

	_, err = NewBERDecoder([]byte{0x78, 0x00}).ReadApplicationTagContents(23)
	assert.ErrorIs(t, err, ErrTagMismatch)
}
