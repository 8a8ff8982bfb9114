package ldap

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownExtendedOperation is returned when no decoder is registered for
// an extended request OID.
var ErrUnknownExtendedOperation = errors.New("ldap: unknown extended operation")

// ControlDecoder decodes a control envelope into its typed form.
type ControlDecoder func(ctrl Control) (any, error)

// ExtendedRequestDecoder decodes an extended request envelope into its typed form.
type ExtendedRequestDecoder func(req *ExtendedRequest) (any, error)

// registry maps OIDs to decoders of one kind.
type registry[T any] struct {
	mu       sync.RWMutex
	decoders map[string]T
}

func newRegistry[T any]() *registry[T] {
	return &registry[T]{decoders: make(map[string]T)}
}

func (r *registry[T]) register(oid string, fn T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decoders[oid] = fn
}

func (r *registry[T]) lookup(oid string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.decoders[oid]
	return fn, ok
}

func (r *registry[T]) oids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	oids := make([]string, 0, len(r.decoders))
	for oid := range r.decoders {
		oids = append(oids, oid)
	}
	sort.Strings(oids)
	return oids
}

var (
	controlDecoders  = newRegistry[ControlDecoder]()
	extendedDecoders = newRegistry[ExtendedRequestDecoder]()
)

// RegisterControlDecoder registers fn for controls with the given OID,
// replacing any earlier registration. Typed codec packages call it from init.
func RegisterControlDecoder(oid string, fn ControlDecoder) {
	controlDecoders.register(oid, fn)
}

// RegisterExtendedRequestDecoder registers fn for extended requests with the
// given OID, replacing any earlier registration.
func RegisterExtendedRequestDecoder(oid string, fn ExtendedRequestDecoder) {
	extendedDecoders.register(oid, fn)
}

// RegisteredControlOIDs returns the registered control OIDs in sorted order.
func RegisteredControlOIDs() []string {
	return controlDecoders.oids()
}

// RegisteredExtendedRequestOIDs returns the registered extended request OIDs
// in sorted order.
func RegisteredExtendedRequestOIDs() []string {
	return extendedDecoders.oids()
}

// DecodeControl decodes a single envelope with its registered decoder.
// It returns the envelope unchanged when no decoder is registered for its OID
// or when it already carries a typed value.
func DecodeControl(ctrl Control) (Control, error) {
	if ctrl.decoded != nil {
		return ctrl, nil
	}
	fn, ok := controlDecoders.lookup(ctrl.OID)
	if !ok {
		return ctrl, nil
	}
	v, err := fn(ctrl)
	if err != nil {
		return ctrl, err
	}
	return ctrl.WithDecoded(v), nil
}

// DecodeControls returns a copy of controls in which every envelope with a
// registered OID carries its typed value. The first decode failure is
// returned along with the index of the offending control.
func DecodeControls(controls []Control) ([]Control, error) {
	if len(controls) == 0 {
		return controls, nil
	}
	out := make([]Control, len(controls))
	for i, ctrl := range controls {
		decoded, err := DecodeControl(ctrl)
		if err != nil {
			return nil, fmt.Errorf("ldap: control %d: %w", i, err)
		}
		out[i] = decoded
	}
	return out, nil
}

// DecodeControlsLenient is DecodeControls that never drops a control. An
// envelope whose decoder fails is kept generic, so a typed getter decodes it
// again and reports the failure to its caller. The returned error joins every
// decode failure and is informational.
func DecodeControlsLenient(controls []Control) ([]Control, error) {
	if len(controls) == 0 {
		return controls, nil
	}
	out := make([]Control, len(controls))
	var errs []error
	for i, ctrl := range controls {
		decoded, err := DecodeControl(ctrl)
		if err != nil {
			errs = append(errs, fmt.Errorf("ldap: control %d: %w", i, err))
			decoded = ctrl
		}
		out[i] = decoded
	}
	return out, errors.Join(errs...)
}

// DecodeExtendedRequest decodes req with the decoder registered for its OID.
func DecodeExtendedRequest(req *ExtendedRequest) (any, error) {
	fn, ok := extendedDecoders.lookup(req.OID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExtendedOperation, req.OID)
	}
	return fn(req)
}
