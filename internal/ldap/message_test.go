package ldap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/obasdk/internal/ber"
)

func TestMessageRoundTrip(t *testing.T) {
	req := NewExtendedRequest("1.2", []byte{0x01},
		NewControl("1.2", false, []byte{}),
		NewControl("1.3", true, nil),
	)
	msg, err := req.Message(1)
	require.NoError(t, err)

	data, err := msg.Encode()
	require.NoError(t, err)

	want := []byte{
		0x30, 0x22,
		0x02, 0x01, 0x01,
		0x77, 0x08, 0x80, 0x03, '1', '.', '2', 0x81, 0x01, 0x01,
		0xA0, 0x13,
		0x30, 0x07, 0x04, 0x03, '1', '.', '2', 0x04, 0x00,
		0x30, 0x08, 0x04, 0x03, '1', '.', '3', 0x01, 0x01, 0xFF,
	}
	assert.Equal(t, want, data)

	parsed, err := ParseLDAPMessage(data)
	require.NoError(t, err)
	assert.Equal(t, 1, parsed.MessageID)
	assert.Equal(t, OperationType(ApplicationExtendedRequest), parsed.OperationType())
	require.Len(t, parsed.Controls, 2)

	assert.Equal(t, "1.2", parsed.Controls[0].OID)
	assert.True(t, parsed.Controls[0].HasValue(), "empty present value must survive")
	assert.Empty(t, parsed.Controls[0].Value)

	assert.True(t, parsed.Controls[1].Criticality)
	assert.False(t, parsed.Controls[1].HasValue())

	back, err := ParseExtendedRequest(parsed.Operation.Data)
	require.NoError(t, err)
	assert.Equal(t, "1.2", back.OID)
	assert.Equal(t, []byte{0x01}, back.Value)
}

func TestParseWrappedControls(t *testing.T) {
	data := []byte{
		0x30, 0x11,
		0x02, 0x01, 0x05,
		0x42, 0x00, // UnbindRequest
		0xA0, 0x0A,
		0x30, 0x08,
		0x30, 0x06, 0x04, 0x04, '1', '.', '2', '3',
	}

	msg, err := ParseLDAPMessage(data)
	require.NoError(t, err)
	assert.Equal(t, OperationType(ApplicationUnbindRequest), msg.OperationType())
	require.Len(t, msg.Controls, 1)
	assert.Equal(t, "1.23", msg.Controls[0].OID)
}

func TestParseLDAPMessageErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "empty", data: nil, want: ErrEmptyMessage},
		{name: "not a sequence", data: []byte{0x04, 0x00}, want: ber.ErrTagMismatch},
		{name: "negative id", data: []byte{0x30, 0x05, 0x02, 0x01, 0xFF, 0x42, 0x00}, want: ErrInvalidMessageID},
		{name: "missing operation", data: []byte{0x30, 0x03, 0x02, 0x01, 0x01}, want: ErrMissingOperation},
		{name: "universal operation", data: []byte{0x30, 0x05, 0x02, 0x01, 0x01, 0x04, 0x00}, want: ErrInvalidOperation},
		{name: "truncated operation", data: []byte{0x30, 0x05, 0x02, 0x01, 0x01, 0x77, 0x05}, want: ber.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLDAPMessage(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEncodeValidation(t *testing.T) {
	_, err := (&LDAPMessage{MessageID: -1, Operation: &RawOperation{}}).Encode()
	assert.ErrorIs(t, err, ErrInvalidMessageID)

	_, err = (&LDAPMessage{MessageID: 1}).Encode()
	assert.ErrorIs(t, err, ErrMissingOperation)
}

func TestUnbindEncoding(t *testing.T) {
	data, err := (&UnbindRequest{}).Message(2).Encode()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30, 0x05, 0x02, 0x01, 0x02, 0x42, 0x00}, data)

	parsed, err := ParseLDAPMessage(data)
	require.NoError(t, err)
	assert.Equal(t, OperationType(ApplicationUnbindRequest), parsed.OperationType())
	assert.Empty(t, parsed.Operation.Data)
}

func TestControlHelpers(t *testing.T) {
	controls := []Control{
		NewControl("1.1", false, nil),
		NewControl("1.2", true, []byte("a")),
		NewControl("1.2", false, []byte("b")),
	}

	found, ok := FindControl(controls, "1.2")
	require.True(t, ok)
	assert.Equal(t, []byte("a"), found.Value)

	_, ok = FindControl(controls, "9.9")
	assert.False(t, ok)

	assert.Equal(t, "Control(oid=1.2, critical=true, valueLength=1)", found.String())
	assert.Equal(t, "Control(oid=1.1, critical=false)", controls[0].String())

	typed := found.WithDecoded("typed")
	assert.Equal(t, "typed", typed.Decoded())
	assert.Nil(t, found.Decoded(), "WithDecoded must not modify the receiver")
}

func TestEncodeParseControls(t *testing.T) {
	controls := []Control{NewControl("1.2", true, []byte{0x05})}
	data, err := EncodeControls(controls)
	require.NoError(t, err)

	parsed, err := ParseControls(data)
	require.NoError(t, err)
	assert.Equal(t, controls, parsed)

	_, err = ParseControls([]byte{0x30, 0x02, 0x04, 0x00})
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}
