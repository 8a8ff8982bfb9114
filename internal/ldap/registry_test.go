package ldap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/obasdk/internal/ber"
)

const (
	testControlOID  = "1.3.6.1.4.1.99999.1"
	testFailingOID  = "1.3.6.1.4.1.99999.2"
	testExtendedOID = "1.3.6.1.4.1.99999.3"
)

type testTyped struct {
	value string
}

func init() {
	RegisterControlDecoder(testControlOID, func(c Control) (any, error) {
		if !c.HasValue() {
			return nil, NewMissingValueError(c.OID, "no value")
		}
		return &testTyped{value: string(c.Value)}, nil
	})
	RegisterControlDecoder(testFailingOID, func(c Control) (any, error) {
		return nil, NewMalformedValueError(c.OID, "always fails", ber.ErrInvalidBoolean)
	})
	RegisterExtendedRequestDecoder(testExtendedOID, func(r *ExtendedRequest) (any, error) {
		return &testTyped{value: string(r.Value)}, nil
	})
}

func TestDecodeControls(t *testing.T) {
	input := []Control{
		NewControl("1.9", false, []byte("raw")),
		NewControl(testControlOID, false, []byte("hello")),
	}

	out, err := DecodeControls(input)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Nil(t, out[0].Decoded(), "unknown OIDs stay generic")
	typed, ok := out[1].Decoded().(*testTyped)
	require.True(t, ok)
	assert.Equal(t, "hello", typed.value)

	assert.Nil(t, input[1].Decoded(), "input slice must not be modified")
}

func TestDecodeControlsLenient(t *testing.T) {
	input := []Control{
		NewControl(testFailingOID, true, []byte{0x01}),
		NewControl(testControlOID, false, []byte("hello")),
	}

	out, err := DecodeControlsLenient(input)
	assert.ErrorIs(t, err, ErrMalformedValue)
	require.Len(t, out, 2)
	assert.Equal(t, input[0], out[0])
	typed, ok := out[1].Decoded().(*testTyped)
	require.True(t, ok)
	assert.Equal(t, "hello", typed.value)

	out, err = DecodeControlsLenient(nil)
	assert.NoError(t, err)
	assert.Empty(t, out)
}

func TestDecodeControlKeepsMaterialized(t *testing.T) {
	existing := &testTyped{value: "already"}
	ctrl := NewControl(testControlOID, false, []byte("other")).WithDecoded(existing)

	out, err := DecodeControl(ctrl)
	require.NoError(t, err)
	assert.Same(t, existing, out.Decoded())
}

func TestDecodeControlsErrors(t *testing.T) {
	_, err := DecodeControls([]Control{NewControl(testControlOID, false, nil)})
	assert.ErrorIs(t, err, ErrMissingValue)

	_, err = DecodeControls([]Control{NewControl(testFailingOID, false, []byte{0x00})})
	assert.ErrorIs(t, err, ErrMalformedValue)
	assert.ErrorIs(t, err, ber.ErrInvalidBoolean)

	var valueErr *ValueError
	require.ErrorAs(t, err, &valueErr)
	assert.Equal(t, testFailingOID, valueErr.OID)

	code, ok := ResultCodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ResultDecodingError, code)
}

func TestDecodeExtendedRequest(t *testing.T) {
	v, err := DecodeExtendedRequest(NewExtendedRequest(testExtendedOID, []byte("x")))
	require.NoError(t, err)
	assert.Equal(t, &testTyped{value: "x"}, v)

	_, err = DecodeExtendedRequest(NewExtendedRequest("1.9.9", nil))
	assert.ErrorIs(t, err, ErrUnknownExtendedOperation)
}

func TestRegisteredOIDs(t *testing.T) {
	assert.Contains(t, RegisteredControlOIDs(), testControlOID)
	assert.Contains(t, RegisteredExtendedRequestOIDs(), testExtendedOID)
}

func TestResultCodeOf(t *testing.T) {
	_, ok := ResultCodeOf(errors.New("plain"))
	assert.False(t, ok)

	err := &ResultError{Op: "bind", Result: NewErrorResult(ResultInvalidCredentials, "bad password")}
	code, ok := ResultCodeOf(err)
	require.True(t, ok)
	assert.Equal(t, ResultInvalidCredentials, code)
	assert.Equal(t, "ldap: bind failed: invalidCredentials (49): bad password", err.Error())
}
