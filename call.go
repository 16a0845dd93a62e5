package dispatchcache

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"
)

// Call identifies one dispatchable action in either of the two accepted
// shapes: the positional ActionCall or the single-descriptor DescriptorCall.
// The set of implementations is closed.
type Call interface {
	// Key returns the cache key derived from this call.
	Key() string

	// timeout reports the call-level timeout and whether the call defines
	// one at all. A defined zero is distinct from "not defined".
	timeout() (time.Duration, bool)
}

// CallOptions carries per-call overrides for the positional form.
type CallOptions struct {
	// Timeout, when non-nil, overrides the cache default even when it
	// points at zero, which pins the entry as never-expiring.
	Timeout *time.Duration
}

// ActionCall is the positional call shape: an action name, an optional
// payload and optional per-call options.
type ActionCall struct {
	Name    string
	Payload any
	Options *CallOptions
}

// DescriptorCall is the single-descriptor call shape. It carries no payload.
type DescriptorCall struct {
	Type string

	// Timeout, when non-nil, overrides the cache default even when zero.
	Timeout *time.Duration
}

// Key returns the action name, with ":" + the serialized payload appended
// when the payload is truthy. Falsy payloads (nil, false, zero numbers,
// NaN, the empty string) collapse to the bare action name, so
// ActionCall{Name: "a"} and ActionCall{Name: "a", Payload: nil} share an
// entry. Payload serialization does not canonicalize struct field order;
// structurally equal payloads declared with different field order yield
// different keys.
func (c ActionCall) Key() string {
	if !truthy(c.Payload) {
		return c.Name
	}
	return c.Name + ":" + serializePayload(c.Payload)
}

func (c ActionCall) timeout() (time.Duration, bool) {
	if c.Options == nil || c.Options.Timeout == nil {
		return 0, false
	}
	return *c.Options.Timeout, true
}

// Key returns the descriptor's type; the descriptor form never carries a
// payload segment.
func (c DescriptorCall) Key() string {
	return c.Type
}

func (c DescriptorCall) timeout() (time.Duration, bool) {
	if c.Timeout == nil {
		return 0, false
	}
	return *c.Timeout, true
}

// serializePayload renders a payload for key derivation. Strings pass
// through unchanged; everything else is JSON-encoded, falling back to
// fmt.Sprint for values JSON cannot represent. Derivation never fails.
func serializePayload(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// truthy reports whether a payload participates in the cache key. Nil,
// false, zero numerics, NaN and the empty string do not; empty-but-non-nil
// maps and slices do.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() != 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}
