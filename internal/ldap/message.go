package ldap

import (
	"github.com/KilimcininKorOglu/obasdk/internal/ber"
)

// ParseLDAPMessage parses a BER-encoded LDAP message envelope.
func ParseLDAPMessage(data []byte) (*LDAPMessage, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}

	decoder := ber.NewBERDecoder(data)

	seqLength, err := decoder.ExpectSequence()
	if err != nil {
		return nil, NewParseError(0, "expected SEQUENCE for LDAPMessage", err)
	}
	seqContentEnd := decoder.Offset() + seqLength
	if seqContentEnd > len(data) {
		return nil, NewParseError(decoder.Offset(), "truncated LDAPMessage", ber.ErrUnexpectedEOF)
	}

	msgID, err := decoder.ReadInteger()
	if err != nil {
		return nil, NewParseError(decoder.Offset(), "failed to read messageID", err)
	}
	if msgID < MinMessageID || msgID > MaxMessageID {
		return nil, ErrInvalidMessageID
	}

	if decoder.Offset() >= seqContentEnd {
		return nil, ErrMissingOperation
	}

	opStartOffset := decoder.Offset()
	class, _, tagNum, err := decoder.ReadTag()
	if err != nil {
		return nil, NewParseError(opStartOffset, "failed to read protocolOp tag", err)
	}
	if class != ber.ClassApplication {
		return nil, NewParseError(opStartOffset, "protocolOp must have APPLICATION tag class", ErrInvalidOperation)
	}

	opLength, err := decoder.ReadLength()
	if err != nil {
		return nil, NewParseError(decoder.Offset(), "failed to read protocolOp length", err)
	}

	opContentStart := decoder.Offset()
	opContentEnd := opContentStart + opLength
	if opContentEnd > seqContentEnd {
		return nil, NewParseError(opContentStart, "truncated protocolOp data", ber.ErrUnexpectedEOF)
	}

	opData := make([]byte, opLength)
	copy(opData, data[opContentStart:opContentEnd])

	msg := &LDAPMessage{
		MessageID: int(msgID),
		Operation: &RawOperation{Tag: tagNum, Data: opData},
	}

	// Controls [0] follow the operation.
	if opContentEnd < seqContentEnd {
		controlsDecoder := ber.NewBERDecoder(data[opContentEnd:seqContentEnd])
		if controlsDecoder.IsContextTag(ContextTagControls) {
			controls, err := parseControls(controlsDecoder)
			if err != nil {
				return nil, NewParseError(opContentEnd, "failed to parse controls", err)
			}
			msg.Controls = controls
		}
	}

	return msg, nil
}

// parseControls parses the Controls field from the decoder.
// Controls ::= SEQUENCE OF control Control
//
// The [0] tag replaces the SEQUENCE OF tag, so Control sequences normally
// appear directly inside it. Some peers add an extra SEQUENCE wrapper; both
// forms are accepted.
func parseControls(decoder *ber.BERDecoder) ([]Control, error) {
	ctxDecoder, err := decoder.ReadContextTagContents(ContextTagControls)
	if err != nil {
		return nil, err
	}
	if ctxDecoder.Remaining() == 0 {
		return nil, nil
	}

	if wrapped, ok := unwrapControls(ctxDecoder); ok {
		ctxDecoder = wrapped
	}

	var controls []Control
	for ctxDecoder.Remaining() > 0 {
		ctrl, err := parseControl(ctxDecoder)
		if err != nil {
			return nil, err
		}
		controls = append(controls, ctrl)
	}
	return controls, nil
}

// unwrapControls detects a SEQUENCE wrapping Control sequences. A Control
// starts with an OCTET STRING, while a wrapper starts with a SEQUENCE.
func unwrapControls(decoder *ber.BERDecoder) (*ber.BERDecoder, bool) {
	start := decoder.Offset()
	outer, err := decoder.ReadSequenceContents()
	if err != nil {
		decoder.SetOffset(start)
		return nil, false
	}
	if decoder.Remaining() == 0 && outer.Remaining() > 0 {
		class, _, tagNum, err := outer.PeekTag()
		if err == nil && class == ber.ClassUniversal && tagNum == ber.TagSequence {
			return outer, true
		}
	}
	decoder.SetOffset(start)
	return nil, false
}

// Encode encodes the LDAPMessage to BER format.
func (m *LDAPMessage) Encode() ([]byte, error) {
	if m.MessageID < MinMessageID || m.MessageID > MaxMessageID {
		return nil, ErrInvalidMessageID
	}
	if m.Operation == nil {
		return nil, ErrMissingOperation
	}

	encoder := ber.NewBEREncoder(256)
	seqPos := encoder.BeginSequence()

	if err := encoder.WriteInteger(int64(m.MessageID)); err != nil {
		return nil, err
	}

	appPos := encoder.WriteApplicationTag(m.Operation.Tag, isConstructedOperation(m.Operation.Tag))
	encoder.WriteRaw(m.Operation.Data)
	if err := encoder.EndApplicationTag(appPos); err != nil {
		return nil, err
	}

	if len(m.Controls) > 0 {
		ctxPos := encoder.WriteContextTag(ContextTagControls, true)
		for _, ctrl := range m.Controls {
			if err := encodeControl(encoder, ctrl); err != nil {
				return nil, err
			}
		}
		if err := encoder.EndContextTag(ctxPos); err != nil {
			return nil, err
		}
	}

	if err := encoder.EndSequence(seqPos); err != nil {
		return nil, err
	}
	return encoder.Bytes(), nil
}

// isConstructedOperation returns true if the operation type is constructed
func isConstructedOperation(tag int) bool {
	switch tag {
	case ApplicationUnbindRequest:
		// UnbindRequest is NULL
		return false
	case ApplicationAbandonRequest:
		// AbandonRequest is a MessageID INTEGER
		return false
	default:
		return true
	}
}
