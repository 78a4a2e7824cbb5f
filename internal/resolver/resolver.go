// Package resolver implements dependency resolution and wiring: for every
// plugin P and every name R in P's Requires list, build a CapabilityTable
// for P out of everything R provides.
//
// Adapted to the in-process Go plugin symbols the loader package already
// resolved.
package resolver

import (
	"fmt"

	"plugboard.dev/plugboard/internal/abi"
	"plugboard.dev/plugboard/internal/loader"
)

// ResolveAll builds one CapabilityTable per plugin, keyed by plugin name,
// containing every capability provided by that plugin's required
// dependencies. A required plugin that was not loaded, or a provided
// capability whose entry symbol does not resolve, is a fatal configuration
// error.
func ResolveAll(plugins []*loader.LoadedPlugin) (map[string]*abi.CapabilityTable, error) {
	byName := make(map[string]*loader.LoadedPlugin, len(plugins))
	for _, p := range plugins {
		byName[p.Descriptor.Name] = p
	}

	tables := make(map[string]*abi.CapabilityTable, len(plugins))
	for _, p := range plugins {
		table := &abi.CapabilityTable{}
		for _, reqName := range p.Descriptor.Requires {
			provider, ok := byName[reqName]
			if !ok {
				return nil, fmt.Errorf("plugin %q requires %q, which is not loaded", p.Descriptor.Name, reqName)
			}
			for _, prov := range provider.Descriptor.Provides {
				sym, err := provider.Symbols.Lookup(prov.Entry)
				if err != nil {
					return nil, fmt.Errorf("plugin %q capability %q (entry %q on %q) did not resolve: %w",
						p.Descriptor.Name, prov.Capability, prov.Entry, reqName, err)
				}
				table.Add(abi.NewCapability(prov.Capability, sym))
			}
		}
		tables[p.Descriptor.Name] = table
	}
	return tables, nil
}
