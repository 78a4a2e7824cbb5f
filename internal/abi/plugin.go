package abi

// SymbolResolver abstracts symbol lookup in a loaded plugin image. The
// standard library's *plugin.Plugin returns plugin.Symbol rather than
// interface{}, so the loader package wraps it in an adapter that satisfies
// this interface; tests use a map-backed implementation instead so the
// resolver and lifecycle packages can be exercised without real .so files.
type SymbolResolver interface {
	Lookup(symbol string) (interface{}, error)
}

// Well-known symbol names every plugin exports beyond its declared
// capabilities.
const (
	SymbolSummary = "Summary"
	SymbolStart   = "Start"
	SymbolStop    = "Stop"
	SymbolRun     = "Run"
)

// SummaryFunc is the signature of the mandatory Summary symbol: it returns
// the NUL-terminated (here: plain) JSON Plugin Descriptor text.
type SummaryFunc func() string

// StartFunc is the signature of a Service's Start symbol. attrsYAML is the
// NUL-terminated YAML attributes document, or "" if none was configured.
// Returns 0 on success, negative on failure.
type StartFunc func(caps *CapabilityTable, attrsYAML string) int

// StopFunc is the signature of a Service's Stop symbol.
type StopFunc func() int

// RunFunc is the signature of a Skill's Run symbol.
type RunFunc func(caps *CapabilityTable, attrsYAML string) int
