// Package objcode defines the ObjectCode artifact produced by a
// compilation: raw output bytes for one target format plus the mapping
// from requested symbol name expressions to their backend-resolved
// (lowered) names.
//
// ObjectCode is a container only. Loading artifacts onto a device and
// retrieving kernels belongs to a runtime layer, not this module.
package objcode

import (
	"github.com/gpujit/gpujit/backend"
	"github.com/gpujit/gpujit/errz"
)

// Format values accepted by New. This is a superset of what a compilation
// can emit: fatbin artifacts come from offline tooling but are still valid
// object code containers.
var supportedFormats = map[backend.TargetFormat]bool{
	backend.Cubin: true,
	backend.PTX:   true,
	backend.LTOIR: true,
	Fatbin:        true,
}

// Fatbin is the multi-architecture container format. Compilations never
// emit it, but artifacts of this format may be wrapped in an ObjectCode.
const Fatbin backend.TargetFormat = "fatbin"

// ObjectCode holds compiled output for exactly one target format. It is
// immutable after creation.
type ObjectCode struct {
	data    []byte
	format  backend.TargetFormat
	names   []string          // request order
	lowered map[string]string // name expression -> lowered name
}

// Option configures an ObjectCode under construction.
type Option func(*ObjectCode)

// WithSymbol records the lowered form of one requested name expression.
// Symbols retain the order in which they are added.
func WithSymbol(name, lowered string) Option {
	return func(o *ObjectCode) {
		if _, exists := o.lowered[name]; !exists {
			o.names = append(o.names, name)
		}
		o.lowered[name] = lowered
	}
}

// New wraps compiled output bytes in an ObjectCode. It fails if the format
// is not a recognized object code format.
func New(data []byte, format backend.TargetFormat, opts ...Option) (*ObjectCode, error) {
	if !supportedFormats[format] {
		return nil, errz.New(errz.UnsupportedTargetFormat, "%q is not an object code format", format)
	}
	o := &ObjectCode{
		data:    data,
		format:  format,
		lowered: map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o, nil
}

// Bytes returns the raw compiled output. The slice must not be modified.
func (o *ObjectCode) Bytes() []byte {
	return o.data
}

// Format returns the target format of the compiled output.
func (o *ObjectCode) Format() backend.TargetFormat {
	return o.format
}

// LoweredName returns the backend-resolved name for a requested name
// expression, and whether the expression was part of the compilation.
func (o *ObjectCode) LoweredName(name string) (string, bool) {
	lowered, ok := o.lowered[name]
	return lowered, ok
}

// SymbolNames returns the requested name expressions in request order.
func (o *ObjectCode) SymbolNames() []string {
	names := make([]string, len(o.names))
	copy(names, o.names)
	return names
}

// SymbolMapping returns a copy of the full name expression to lowered name
// mapping.
func (o *ObjectCode) SymbolMapping() map[string]string {
	m := make(map[string]string, len(o.lowered))
	for k, v := range o.lowered {
		m[k] = v
	}
	return m
}
