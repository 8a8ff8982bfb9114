package extended

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/obasdk/internal/ber"
	"github.com/KilimcininKorOglu/obasdk/internal/ldap"
)

func TestEndTransactionArity(t *testing.T) {
	tests := []struct {
		name   string
		commit bool
		wire   []byte
	}{
		{name: "commit omits flag", commit: true, wire: []byte{0x30, 0x03, 0x04, 0x01, 'X'}},
		{name: "abort carries flag", commit: false, wire: []byte{0x30, 0x06, 0x01, 0x01, 0x00, 0x04, 0x01, 'X'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewEndTransactionRequest([]byte("X"), tt.commit)
			require.NoError(t, err)

			ext := req.ToExtendedRequest()
			assert.Equal(t, EndTransactionRequestOID, ext.OID)
			assert.Equal(t, tt.wire, ext.Value)

			decoded, err := DecodeEndTransactionRequest(ldap.NewExtendedRequest(EndTransactionRequestOID, tt.wire))
			require.NoError(t, err)
			assert.Equal(t, tt.commit, decoded.Commit())
			assert.Equal(t, []byte("X"), decoded.TransactionID())
		})
	}
}

func TestEndTransactionExplicitCommitCanonicalizes(t *testing.T) {
	explicit := []byte{0x30, 0x06, 0x01, 0x01, 0xFF, 0x04, 0x01, 'X'}
	decoded, err := DecodeEndTransactionRequest(ldap.NewExtendedRequest(EndTransactionRequestOID, explicit))
	require.NoError(t, err)
	assert.True(t, decoded.Commit())

	reencoded, err := NewEndTransactionRequest(decoded.TransactionID(), decoded.Commit())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x30, 0x03, 0x04, 0x01, 'X'}, reencoded.ToExtendedRequest().Value)
}

func TestDecodeEndTransactionRequestErrors(t *testing.T) {
	t.Run("missing value", func(t *testing.T) {
		_, err := DecodeEndTransactionRequest(ldap.NewExtendedRequest(EndTransactionRequestOID, nil))
		assert.ErrorIs(t, err, ldap.ErrMissingValue)
	})

	tests := []struct {
		name  string
		value []byte
		cause error
	}{
		{name: "not a sequence", value: []byte{0x04, 0x01, 'X'}, cause: ber.ErrTagMismatch},
		{name: "empty sequence", value: []byte{0x30, 0x00}},
		{name: "single non string", value: []byte{0x30, 0x03, 0x01, 0x01, 0x00}, cause: ber.ErrTagMismatch},
		{name: "flag not boolean", value: []byte{0x30, 0x06, 0x04, 0x01, 'a', 0x04, 0x01, 'X'}, cause: ber.ErrTagMismatch},
		{name: "id not string", value: []byte{0x30, 0x06, 0x01, 0x01, 0x00, 0x02, 0x01, 0x01}, cause: ber.ErrTagMismatch},
		{name: "empty id", value: []byte{0x30, 0x02, 0x04, 0x00}},
		{name: "trailing data", value: []byte{0x30, 0x03, 0x04, 0x01, 'X', 0x00}, cause: ber.ErrTrailingData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEndTransactionRequest(ldap.NewExtendedRequest(EndTransactionRequestOID, tt.value))
			require.Error(t, err)
			assert.ErrorIs(t, err, ldap.ErrMalformedValue)
			if tt.cause != nil {
				assert.ErrorIs(t, err, tt.cause)
			}
		})
	}
}

func TestNewEndTransactionRequestValidation(t *testing.T) {
	_, err := NewEndTransactionRequest(nil, true)
	assert.ErrorIs(t, err, ErrInvalidTransactionID)
}

func TestDecodeKeepsEnvelopeSettings(t *testing.T) {
	ctrl := ldap.NewControl("1.2.3", true, nil)
	ext := ldap.NewExtendedRequest(EndTransactionRequestOID, []byte{0x30, 0x03, 0x04, 0x01, 'X'}, ctrl)
	ext.ResponseTimeout = 5 * time.Second

	req, err := DecodeEndTransactionRequest(ext)
	require.NoError(t, err)
	assert.Equal(t, []ldap.Control{ctrl}, req.Controls())
	assert.Equal(t, 5*time.Second, req.ResponseTimeout())

	back := req.ToExtendedRequest()
	assert.Equal(t, ext.Value, back.Value)
	assert.Equal(t, ext.ResponseTimeout, back.ResponseTimeout)
}

func TestEndTransactionDuplicate(t *testing.T) {
	orig, err := NewEndTransactionRequest([]byte("txn"), false, ldap.NewControl("1.1", false, nil))
	require.NoError(t, err)
	orig = orig.WithResponseTimeout(42 * time.Second)

	replacement := ldap.NewControl("2.2", true, []byte("v"))
	dup := orig.Duplicate(replacement)
	assert.Equal(t, 42*time.Second, dup.ResponseTimeout())
	assert.Equal(t, []ldap.Control{replacement}, dup.Controls())
	assert.Equal(t, orig.TransactionID(), dup.TransactionID())
	assert.Equal(t, orig.Commit(), dup.Commit())
	assert.Equal(t, orig.ToExtendedRequest().Value, dup.ToExtendedRequest().Value)

	all := orig.DuplicateAll()
	assert.Equal(t, orig.Controls(), all.Controls())
	assert.Equal(t, 42*time.Second, all.ResponseTimeout())

	none := orig.Duplicate()
	assert.Empty(t, none.Controls())
	assert.Equal(t, 42*time.Second, none.ResponseTimeout())

	assert.Equal(t, time.Duration(0), orig.Duplicate().WithResponseTimeout(0).ResponseTimeout())
	assert.Equal(t, 42*time.Second, orig.ResponseTimeout(), "WithResponseTimeout must not modify the receiver")
}

type fakeProcessor struct {
	gotReq   *ldap.ExtendedRequest
	gotDepth int
	result   *ldap.ExtendedResult
	err      error
}

func (f *fakeProcessor) ProcessExtendedOperation(_ context.Context, req *ldap.ExtendedRequest, depth int) (*ldap.ExtendedResult, error) {
	f.gotReq = req
	f.gotDepth = depth
	return f.result, f.err
}

func TestEndTransactionProcess(t *testing.T) {
	built, err := BuildEndTransactionResult(ldap.NewErrorResult(ldap.ResultConstraintViolation, "op 7 failed"), 7, nil)
	require.NoError(t, err)

	p := &fakeProcessor{result: &built.ExtendedResult}
	req, err := NewEndTransactionRequest([]byte("txn"), true)
	require.NoError(t, err)

	res, err := req.Process(context.Background(), p, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, p.gotDepth)
	assert.Equal(t, EndTransactionRequestOID, p.gotReq.OID)
	assert.Equal(t, ldap.ResultConstraintViolation, res.ResultCode)
	assert.Equal(t, 7, res.FailedOpMessageID())
}

func TestEndTransactionProcessNoResult(t *testing.T) {
	req, err := NewEndTransactionRequest([]byte("txn"), true)
	require.NoError(t, err)

	res, err := req.Process(context.Background(), &fakeProcessor{}, 0)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoResult)

	_, err = NewEndTransactionResult(nil)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestEndTransactionProcessPropagatesErrors(t *testing.T) {
	transportErr := errors.New("connection reset")
	p := &fakeProcessor{err: transportErr}
	req, err := NewEndTransactionRequest([]byte("txn"), true)
	require.NoError(t, err)

	_, err = req.Process(context.Background(), p, 0)
	assert.ErrorIs(t, err, transportErr)

	p = &fakeProcessor{result: &ldap.ExtendedResult{Value: []byte{0x04, 0x00}}}
	_, err = req.Process(context.Background(), p, 0)
	assert.ErrorIs(t, err, ldap.ErrMalformedValue)
}

func TestEndTransactionResultRoundTrip(t *testing.T) {
	opControls := map[int][]ldap.Control{
		3: {ldap.NewControl("1.2.3", false, []byte("a"))},
		9: {ldap.NewControl("1.2.4", true, nil), ldap.NewControl("1.2.5", false, []byte{})},
	}
	built, err := BuildEndTransactionResult(ldap.NewSuccessResult(), 0, opControls)
	require.NoError(t, err)
	require.True(t, built.HasValue())
	assert.Equal(t, -1, built.FailedOpMessageID())

	parsed, err := NewEndTransactionResult(&built.ExtendedResult)
	require.NoError(t, err)
	assert.Equal(t, -1, parsed.FailedOpMessageID())
	assert.Equal(t, opControls, parsed.OperationResponseControls())
	assert.Equal(t, opControls[9], parsed.OperationResponseControlsFor(9))
	assert.Nil(t, parsed.OperationResponseControlsFor(1))
}

func TestEndTransactionResultWithoutValue(t *testing.T) {
	built, err := BuildEndTransactionResult(ldap.NewSuccessResult(), 0, nil)
	require.NoError(t, err)
	assert.False(t, built.HasValue())

	parsed, err := NewEndTransactionResult(&ldap.ExtendedResult{LDAPResult: ldap.NewSuccessResult()})
	require.NoError(t, err)
	assert.Equal(t, -1, parsed.FailedOpMessageID())
	assert.Empty(t, parsed.OperationResponseControls())
	assert.Equal(t, "EndTransactionExtendedResult(resultCode=success (0))", parsed.String())
}

func TestEndTransactionResultEncoding(t *testing.T) {
	built, err := BuildEndTransactionResult(ldap.NewSuccessResult(), 5, map[int][]ldap.Control{
		5: {ldap.NewControl("1.2", false, nil)},
	})
	require.NoError(t, err)

	want := []byte{
		0x30, 0x13,
		0x02, 0x01, 0x05,
		0x30, 0x0E,
		0x30, 0x0C,
		0x02, 0x01, 0x05,
		0x30, 0x07,
		0x30, 0x05, 0x04, 0x03, '1', '.', '2',
	}
	assert.Equal(t, want, built.Value)
}

func TestEndTransactionResultMalformed(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
	}{
		{name: "not a sequence", value: []byte{0x04, 0x00}},
		{name: "unexpected element", value: []byte{0x30, 0x02, 0x04, 0x00}},
		{name: "update without controls", value: []byte{0x30, 0x05, 0x30, 0x03, 0x02, 0x01, 0x01}},
		{name: "update id not integer", value: []byte{0x30, 0x06, 0x30, 0x04, 0x30, 0x02, 0x04, 0x00}},
		{name: "bad message id", value: []byte{0x30, 0x02, 0x02, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEndTransactionResult(&ldap.ExtendedResult{Value: tt.value})
			assert.ErrorIs(t, err, ldap.ErrMalformedValue)
		})
	}
}

func TestEndTransactionStrings(t *testing.T) {
	req, err := NewEndTransactionRequest([]byte("txn-1"), false, ldap.NewControl("1.2", false, nil))
	require.NoError(t, err)
	assert.Equal(t, "EndTransactionExtendedRequest(transactionID='txn-1', commit=false, controls={Control(oid=1.2, critical=false)})", req.String())
	assert.Equal(t, "End Transaction", req.ExtendedRequestName())
}

func TestEndTransactionRegistered(t *testing.T) {
	v, err := ldap.DecodeExtendedRequest(ldap.NewExtendedRequest(EndTransactionRequestOID, []byte{0x30, 0x03, 0x04, 0x01, 'X'}))
	require.NoError(t, err)
	req, ok := v.(*EndTransactionRequest)
	require.True(t, ok)
	assert.True(t, req.Commit())
}
