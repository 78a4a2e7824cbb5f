// Package abi implements the stable, wire-compatible layer that plugin
// capabilities cross: a bounded-name Capability, a fixed-capacity
// CapabilityTable, and the Plugin Descriptor both sides agree on.
//
// This boundary models a C ABI (raw function pointers, NUL-padded byte
// buffers) even though the process never actually leaves the Go runtime:
// plugins are loaded in-process with the standard library's plugin
// package, so the "function pointer" is a Go func value stored behind
// interface{}. The fixed capacity and bounded name length are kept
// anyway: they are a wire-compat constraint carried over from that C ABI
// shape, not a policy this implementation is free to drop.
package abi

import "fmt"

// NameLen is the maximum byte length of a capability name, matching a
// 64-byte NUL-padded buffer.
const NameLen = 64

// TableCapacity is the fixed number of Capability slots in a
// CapabilityTable.
const TableCapacity = 20

// Capability is a named function value exported by one plugin and
// consumed by another. Name is bounded to NameLen bytes; Fn holds the
// actual function value and must be type-asserted by the caller against
// the signature documented for that capability name; a mismatched
// assertion panics, standing in for undefined behavior on a signature
// mismatch across a real C ABI.
type Capability struct {
	name [NameLen]byte
	nlen int
	Fn   interface{}
}

// NewCapability builds a Capability, truncating name to NameLen-1 bytes
// if necessary to leave room for the implicit NUL terminator.
func NewCapability(name string, fn interface{}) Capability {
	var c Capability
	b := []byte(name)
	if len(b) > NameLen-1 {
		b = b[:NameLen-1]
	}
	copy(c.name[:], b)
	c.nlen = len(b)
	c.Fn = fn
	return c
}

// Name returns the unpadded capability name.
func (c Capability) Name() string {
	return string(c.name[:c.nlen])
}

func (c Capability) String() string {
	return fmt.Sprintf("Capability{%s}", c.Name())
}

// CapabilityTable is a fixed-capacity, append-only sequence of
// Capabilities plus a count, handed to a plugin's start/run entry point.
//
// Add silently drops entries once the table is full rather than growing;
// see the "Fixed-capacity capability table" design note: a wire-compat
// constraint preserved here even though nothing actually serializes across
// a process boundary.
type CapabilityTable struct {
	entries [TableCapacity]Capability
	count   int
}

// Add appends cap if the table has room. It reports whether the entry was
// stored; a false return means the table was already at TableCapacity and
// the entry was discarded.
func (t *CapabilityTable) Add(cap Capability) bool {
	if t.count >= TableCapacity {
		return false
	}
	t.entries[t.count] = cap
	t.count++
	return true
}

// Get performs a case-sensitive linear scan for name and returns the
// matching Capability, if any.
func (t *CapabilityTable) Get(name string) (Capability, bool) {
	for i := 0; i < t.count; i++ {
		if t.entries[i].Name() == name {
			return t.entries[i], true
		}
	}
	return Capability{}, false
}

// Len returns the number of stored capabilities.
func (t *CapabilityTable) Len() int {
	return t.count
}

// All returns the stored capabilities in insertion order. The returned
// slice is a copy; mutating it does not affect the table.
func (t *CapabilityTable) All() []Capability {
	out := make([]Capability, t.count)
	copy(out, t.entries[:t.count])
	return out
}
