package ldap

import (
	"fmt"

	"github.com/KilimcininKorOglu/obasdk/internal/ber"
)

// Control represents an LDAP control as defined in RFC 4511 Section 4.1.11
// Control ::= SEQUENCE {
//
//	controlType             LDAPOID,
//	criticality             BOOLEAN DEFAULT FALSE,
//	controlValue            OCTET STRING OPTIONAL
//
// }
//
// A nil Value means the control carries no value. A present but empty value
// is a non-nil empty slice.
type Control struct {
	// OID is the control type OID
	OID string
	// Criticality indicates whether the control is critical
	Criticality bool
	// Value is the optional control value
	Value []byte

	// decoded is the typed form attached by DecodeControls or by a typed
	// codec's ToControl.
	decoded any
}

// NewControl creates a control envelope.
func NewControl(oid string, critical bool, value []byte) Control {
	return Control{OID: oid, Criticality: critical, Value: value}
}

// HasValue reports whether the control carries a value.
func (c Control) HasValue() bool {
	return c.Value != nil
}

// Decoded returns the typed value materialized for this control, or nil.
func (c Control) Decoded() any {
	return c.decoded
}

// WithDecoded returns a copy of the control with v attached as its typed form.
func (c Control) WithDecoded(v any) Control {
	c.decoded = v
	return c
}

// String returns a short description of the control.
func (c Control) String() string {
	if c.HasValue() {
		return fmt.Sprintf("Control(oid=%s, critical=%t, valueLength=%d)", c.OID, c.Criticality, len(c.Value))
	}
	return fmt.Sprintf("Control(oid=%s, critical=%t)", c.OID, c.Criticality)
}

// FindControl returns the first control with the given OID.
func FindControl(controls []Control, oid string) (Control, bool) {
	for _, ctrl := range controls {
		if ctrl.OID == oid {
			return ctrl, true
		}
	}
	return Control{}, false
}

// parseControl parses a single Control from the decoder.
func parseControl(decoder *ber.BERDecoder) (Control, error) {
	ctrl := Control{}

	ctrlDecoder, err := decoder.ReadSequenceContents()
	if err != nil {
		return ctrl, err
	}

	oidBytes, err := ctrlDecoder.ReadOctetString()
	if err != nil {
		return ctrl, NewParseError(ctrlDecoder.Offset(), "failed to read control OID", err)
	}
	if len(oidBytes) == 0 {
		return ctrl, NewParseError(ctrlDecoder.Offset(), "control OID is empty", nil)
	}
	ctrl.OID = string(oidBytes)

	// criticality BOOLEAN DEFAULT FALSE
	if ctrlDecoder.Remaining() > 0 {
		class, _, tagNum, err := ctrlDecoder.PeekTag()
		if err == nil && class == ber.ClassUniversal && tagNum == ber.TagBoolean {
			ctrl.Criticality, err = ctrlDecoder.ReadBoolean()
			if err != nil {
				return ctrl, NewParseError(ctrlDecoder.Offset(), "failed to read control criticality", err)
			}
		}
	}

	// controlValue OCTET STRING OPTIONAL
	if ctrlDecoder.Remaining() > 0 {
		ctrl.Value, err = ctrlDecoder.ReadOctetString()
		if err != nil {
			return ctrl, NewParseError(ctrlDecoder.Offset(), "failed to read control value", err)
		}
	}

	if ctrlDecoder.Remaining() > 0 {
		return ctrl, NewParseError(ctrlDecoder.Offset(), "unexpected data after control value", nil)
	}

	return ctrl, nil
}

// ParseControls parses the content of a Controls field: a concatenation of
// Control sequences.
func ParseControls(data []byte) ([]Control, error) {
	decoder := ber.NewBERDecoder(data)
	var controls []Control
	for decoder.Remaining() > 0 {
		ctrl, err := parseControl(decoder)
		if err != nil {
			return nil, err
		}
		controls = append(controls, ctrl)
	}
	return controls, nil
}

// encodeControl encodes a single Control.
func encodeControl(encoder *ber.BEREncoder, ctrl Control) error {
	seqPos := encoder.BeginSequence()

	if err := encoder.WriteOctetString([]byte(ctrl.OID)); err != nil {
		return err
	}

	// Omit criticality when false since it's the default
	if ctrl.Criticality {
		if err := encoder.WriteBoolean(true); err != nil {
			return err
		}
	}

	if ctrl.HasValue() {
		if err := encoder.WriteOctetString(ctrl.Value); err != nil {
			return err
		}
	}

	return encoder.EndSequence(seqPos)
}

// EncodeControls encodes controls as the content of a Controls field.
func EncodeControls(controls []Control) ([]byte, error) {
	encoder := ber.NewBEREncoder(64)
	for _, ctrl := range controls {
		if err := encodeControl(encoder, ctrl); err != nil {
			return nil, err
		}
	}
	return encoder.Bytes(), nil
}
