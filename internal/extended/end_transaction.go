package extended

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KilimcininKorOglu/obasdk/internal/ber"
	"github.com/KilimcininKorOglu/obasdk/internal/ldap"
)

// EndTransactionRequestOID is the OID of the end transaction extended request (RFC 5805).
const EndTransactionRequestOID = "1.3.6.1.1.21.3"

var (
	// ErrInvalidTransactionID is returned when a transaction id is empty.
	ErrInvalidTransactionID = errors.New("extended: transaction id must not be empty")
	// ErrNoResult is returned when a processor reports no result and no error.
	ErrNoResult = errors.New("extended: end transaction: no result")
)

func init() {
	ldap.RegisterExtendedRequestDecoder(EndTransactionRequestOID, func(r *ldap.ExtendedRequest) (any, error) {
		return DecodeEndTransactionRequest(r)
	})
}

// Processor sends an extended request and returns the generic result.
// *client.Conn implements it.
type Processor interface {
	ProcessExtendedOperation(ctx context.Context, req *ldap.ExtendedRequest, depth int) (*ldap.ExtendedResult, error)
}

// EndTransactionRequest commits or aborts a transaction started with a
// start transaction request.
//
//	txnEndReq ::= SEQUENCE {
//	    commit         BOOLEAN DEFAULT TRUE,
//	    identifier     OCTET STRING }
//
// The commit flag is omitted from the encoding when true, and a single
// element value always means commit.
type EndTransactionRequest struct {
	transactionID   []byte
	commit          bool
	controls        []ldap.Control
	responseTimeout time.Duration
	value           []byte
}

// NewEndTransactionRequest creates a request that commits (commit true) or
// aborts the transaction with the given id.
func NewEndTransactionRequest(transactionID []byte, commit bool, controls ...ldap.Control) (*EndTransactionRequest, error) {
	if len(transactionID) == 0 {
		return nil, ErrInvalidTransactionID
	}
	r := &EndTransactionRequest{
		transactionID: append([]byte(nil), transactionID...),
		commit:        commit,
		controls:      copyControls(controls),
	}
	value, err := r.encodeValue()
	if err != nil {
		return nil, err
	}
	r.value = value
	return r, nil
}

// DecodeEndTransactionRequest decodes the typed request from a generic one.
// Controls and response timeout are carried over.
func DecodeEndTransactionRequest(req *ldap.ExtendedRequest) (*EndTransactionRequest, error) {
	if !req.HasValue() {
		return nil, ldap.NewMissingValueError(req.OID, "end transaction request has no value")
	}

	elements, err := ber.DecodeSequence(req.Value)
	if err != nil {
		return nil, ldap.NewMalformedValueError(req.OID, "value is not a sequence", err)
	}

	var (
		commit = true
		idElem ber.Element
	)
	switch len(elements) {
	case 0:
		return nil, ldap.NewMalformedValueError(req.OID, "value sequence is empty", nil)
	case 1:
		idElem = elements[0]
	default:
		commit, err = elements[0].AsBoolean()
		if err != nil {
			return nil, ldap.NewMalformedValueError(req.OID, "invalid commit flag", err)
		}
		idElem = elements[1]
	}

	id, err := idElem.AsOctetString()
	if err != nil {
		return nil, ldap.NewMalformedValueError(req.OID, "invalid transaction id", err)
	}
	if len(id) == 0 {
		return nil, ldap.NewMalformedValueError(req.OID, "transaction id is empty", nil)
	}

	return &EndTransactionRequest{
		transactionID:   id,
		commit:          commit,
		controls:        copyControls(req.Controls),
		responseTimeout: req.ResponseTimeout,
		value:           append([]byte(nil), req.Value...),
	}, nil
}

func (r *EndTransactionRequest) encodeValue() ([]byte, error) {
	id := ber.NewOctetStringElement(r.transactionID)
	if r.commit {
		return ber.EncodeSequence(id)
	}
	return ber.EncodeSequence(ber.NewBooleanElement(false), id)
}

// TransactionID returns a copy of the transaction id.
func (r *EndTransactionRequest) TransactionID() []byte {
	return append([]byte(nil), r.transactionID...)
}

// Commit reports whether the transaction is committed rather than aborted.
func (r *EndTransactionRequest) Commit() bool {
	return r.commit
}

// Controls returns a copy of the request controls.
func (r *EndTransactionRequest) Controls() []ldap.Control {
	return copyControls(r.controls)
}

// ResponseTimeout returns the response timeout; zero means the connection default.
func (r *EndTransactionRequest) ResponseTimeout() time.Duration {
	return r.responseTimeout
}

// WithResponseTimeout returns a copy of the request with the given response timeout.
func (r *EndTransactionRequest) WithResponseTimeout(d time.Duration) *EndTransactionRequest {
	dup := r.DuplicateAll()
	dup.responseTimeout = d
	return dup
}

// ToExtendedRequest returns the generic envelope for this request.
func (r *EndTransactionRequest) ToExtendedRequest() *ldap.ExtendedRequest {
	return &ldap.ExtendedRequest{
		OID:             EndTransactionRequestOID,
		Value:           append([]byte(nil), r.value...),
		Controls:        copyControls(r.controls),
		ResponseTimeout: r.responseTimeout,
	}
}

// Process sends the request through p and wraps the generic result.
func (r *EndTransactionRequest) Process(ctx context.Context, p Processor, depth int) (*EndTransactionResult, error) {
	res, err := p.ProcessExtendedOperation(ctx, r.ToExtendedRequest(), depth)
	if err != nil {
		return nil, fmt.Errorf("extended: end transaction: %w", err)
	}
	return NewEndTransactionResult(res)
}

// Duplicate returns a copy of the request with the given controls replacing
// the original ones. The response timeout is preserved.
func (r *EndTransactionRequest) Duplicate(controls ...ldap.Control) *EndTransactionRequest {
	return &EndTransactionRequest{
		transactionID:   r.transactionID,
		commit:          r.commit,
		controls:        copyControls(controls),
		responseTimeout: r.responseTimeout,
		value:           r.value,
	}
}

// DuplicateAll returns a copy of the request keeping its controls.
func (r *EndTransactionRequest) DuplicateAll() *EndTransactionRequest {
	return r.Duplicate(r.controls...)
}

// ExtendedRequestName returns a human readable name for the request.
func (r *EndTransactionRequest) ExtendedRequestName() string {
	return "End Transaction"
}

// String returns a description of the request.
func (r *EndTransactionRequest) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "EndTransactionExtendedRequest(transactionID='%s', commit=%t", r.transactionID, r.commit)
	if len(r.controls) > 0 {
		b.WriteString(", controls={")
		for i, ctrl := range r.controls {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(ctrl.String())
		}
		b.WriteByte('}')
	}
	b.WriteByte(')')
	return b.String()
}

func copyControls(controls []ldap.Control) []ldap.Control {
	if len(controls) == 0 {
		return nil
	}
	return append([]ldap.Control(nil), controls...)
}
