package extended

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KilimcininKorOglu/obasdk/internal/ber"
	"github.com/KilimcininKorOglu/obasdk/internal/ldap"
)

// EndTransactionResult is the response to an end transaction request.
//
//	txnEndRes ::= SEQUENCE {
//	    messageID             MessageID OPTIONAL,
//	         -- msgid associated with non-success resultCode
//	    updatesControls       SEQUENCE OF updateControls SEQUENCE {
//	         messageID        MessageID,
//	         controls         Controls } OPTIONAL }
//
// The value is absent when the server has nothing to report.
type EndTransactionResult struct {
	ldap.ExtendedResult
	failedOpMessageID  int
	opResponseControls map[int][]ldap.Control
}

// NewEndTransactionResult decodes the typed result from a generic one.
func NewEndTransactionResult(res *ldap.ExtendedResult) (*EndTransactionResult, error) {
	if res == nil {
		return nil, ErrNoResult
	}
	r := &EndTransactionResult{
		ExtendedResult:     *res,
		failedOpMessageID:  -1,
		opResponseControls: map[int][]ldap.Control{},
	}
	if !res.HasValue() {
		return r, nil
	}

	elements, err := ber.DecodeSequence(res.Value)
	if err != nil {
		return nil, ldap.NewMalformedValueError(EndTransactionRequestOID, "result value is not a sequence", err)
	}

	for _, el := range elements {
		switch {
		case el.Is(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger):
			id, err := el.AsInteger()
			if err != nil {
				return nil, ldap.NewMalformedValueError(EndTransactionRequestOID, "invalid failed operation message id", err)
			}
			r.failedOpMessageID = int(id)

		case el.Is(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence):
			if err := r.decodeUpdatesControls(el); err != nil {
				return nil, err
			}

		default:
			return nil, ldap.NewMalformedValueError(EndTransactionRequestOID,
				fmt.Sprintf("unexpected element type 0x%02X", el.Identifier()), nil)
		}
	}

	return r, nil
}

func (r *EndTransactionResult) decodeUpdatesControls(el ber.Element) error {
	updates, err := el.Elements()
	if err != nil {
		return ldap.NewMalformedValueError(EndTransactionRequestOID, "invalid updates controls", err)
	}

	for _, update := range updates {
		fields, err := update.Elements()
		if err != nil || len(fields) != 2 {
			return ldap.NewMalformedValueError(EndTransactionRequestOID, "update controls must hold a message id and controls", err)
		}
		if !fields[0].Is(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger) {
			return ldap.NewMalformedValueError(EndTransactionRequestOID, "update controls message id is not an integer", nil)
		}
		msgID, err := fields[0].AsInteger()
		if err != nil {
			return ldap.NewMalformedValueError(EndTransactionRequestOID, "invalid update controls message id", err)
		}
		if !fields[1].Is(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence) {
			return ldap.NewMalformedValueError(EndTransactionRequestOID, "update controls are not a sequence", nil)
		}
		controls, err := ldap.ParseControls(fields[1].Value)
		if err != nil {
			return ldap.NewMalformedValueError(EndTransactionRequestOID, "invalid update controls", err)
		}
		r.opResponseControls[int(msgID)] = controls
	}
	return nil
}

// BuildEndTransactionResult creates a result with an encoded value. A
// failedOpMessageID of zero or less and no operation controls leave the
// value absent.
func BuildEndTransactionResult(result ldap.LDAPResult, failedOpMessageID int, opControls map[int][]ldap.Control, controls ...ldap.Control) (*EndTransactionResult, error) {
	r := &EndTransactionResult{
		ExtendedResult:     ldap.ExtendedResult{LDAPResult: result, Controls: copyControls(controls)},
		failedOpMessageID:  -1,
		opResponseControls: map[int][]ldap.Control{},
	}
	if failedOpMessageID > 0 {
		r.failedOpMessageID = failedOpMessageID
	}
	for id, ctrls := range opControls {
		r.opResponseControls[id] = copyControls(ctrls)
	}

	if r.failedOpMessageID <= 0 && len(r.opResponseControls) == 0 {
		return r, nil
	}

	encoder := ber.NewBEREncoder(128)
	seqPos := encoder.BeginSequence()
	if r.failedOpMessageID > 0 {
		if err := encoder.WriteInteger(int64(r.failedOpMessageID)); err != nil {
			return nil, err
		}
	}
	if len(r.opResponseControls) > 0 {
		updatesPos := encoder.BeginSequence()
		for _, id := range r.updatedMessageIDs() {
			updatePos := encoder.BeginSequence()
			if err := encoder.WriteInteger(int64(id)); err != nil {
				return nil, err
			}
			controlsValue, err := ldap.EncodeControls(r.opResponseControls[id])
			if err != nil {
				return nil, err
			}
			ctrlPos := encoder.BeginSequence()
			encoder.WriteRaw(controlsValue)
			if err := encoder.EndSequence(ctrlPos); err != nil {
				return nil, err
			}
			if err := encoder.EndSequence(updatePos); err != nil {
				return nil, err
			}
		}
		if err := encoder.EndSequence(updatesPos); err != nil {
			return nil, err
		}
	}
	if err := encoder.EndSequence(seqPos); err != nil {
		return nil, err
	}

	r.Value = encoder.Bytes()
	return r, nil
}

func (r *EndTransactionResult) updatedMessageIDs() []int {
	ids := make([]int, 0, len(r.opResponseControls))
	for id := range r.opResponseControls {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// FailedOpMessageID returns the message id of the operation that caused the
// transaction to fail, or -1 if none was reported.
func (r *EndTransactionResult) FailedOpMessageID() int {
	return r.failedOpMessageID
}

// OperationResponseControls returns the response controls reported for each
// operation in the transaction, keyed by message id.
func (r *EndTransactionResult) OperationResponseControls() map[int][]ldap.Control {
	out := make(map[int][]ldap.Control, len(r.opResponseControls))
	for id, ctrls := range r.opResponseControls {
		out[id] = copyControls(ctrls)
	}
	return out
}

// OperationResponseControlsFor returns the response controls reported for
// the operation with the given message id.
func (r *EndTransactionResult) OperationResponseControlsFor(messageID int) []ldap.Control {
	return copyControls(r.opResponseControls[messageID])
}

// String returns a description of the result.
func (r *EndTransactionResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "EndTransactionExtendedResult(resultCode=%s", r.LDAPResult)
	if r.failedOpMessageID > 0 {
		fmt.Fprintf(&b, ", failedOpMessageID=%d", r.failedOpMessageID)
	}
	if len(r.opResponseControls) > 0 {
		b.WriteString(", opResponseControls={")
		for i, id := range r.updatedMessageIDs() {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "msgID=%d: %d controls", id, len(r.opResponseControls[id]))
		}
		b.WriteByte('}')
	}
	b.WriteByte(')')
	return b.String()
}
