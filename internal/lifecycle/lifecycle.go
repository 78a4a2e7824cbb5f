// Package lifecycle starts configured Services in reverse load order and
// stops them at shutdown; Skills are invoked on demand rather than at
// startup.
//
// Adapted from a database-driven plugin list to the config-ordered list
// this runtime loads.
package lifecycle

import (
	"fmt"

	"github.com/rs/zerolog"
	"plugboard.dev/plugboard/internal/abi"
	"plugboard.dev/plugboard/internal/loader"
	"plugboard.dev/plugboard/internal/logger"
)

type startedService struct {
	name    string
	symbols abi.SymbolResolver
}

// Manager starts configured Services in reverse load order and stops them
// (in the reverse of that, i.e. load order) at shutdown. It does not
// perform a topological sort over Requires: config order is assumed to
// already satisfy dependency order, and ResolveAll already turned a
// genuinely missing dependency into a fatal wiring error before lifecycle
// ever runs.
type Manager struct {
	log     zerolog.Logger
	started []startedService
}

// New creates an empty Manager.
func New() *Manager {
	return &Manager{log: logger.Component("lifecycle")}
}

// StartAll invokes Start on every Service-kind plugin in plugins, walked
// in reverse order, handing each its resolved CapabilityTable and
// pre-serialized attributes document. A nonzero return from Start is
// logged but does not abort the remaining starts or the process.
func (m *Manager) StartAll(plugins []*loader.LoadedPlugin, tables map[string]*abi.CapabilityTable) {
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if p.Descriptor.LibraryType != abi.LibraryTypeService {
			continue
		}

		sym, err := p.Symbols.Lookup(abi.SymbolStart)
		if err != nil {
			m.log.Error().Str("plugin", p.Descriptor.Name).Err(err).Msg("service has no Start symbol")
			continue
		}
		startFn, ok := sym.(func(*abi.CapabilityTable, string) int)
		if !ok {
			if fn, ok2 := sym.(abi.StartFunc); ok2 {
				startFn = fn
			} else {
				m.log.Error().Str("plugin", p.Descriptor.Name).Msg("Start has unexpected signature")
				continue
			}
		}

		rc := startFn(tables[p.Descriptor.Name], p.Attrs)
		if rc != 0 {
			m.log.Error().Str("plugin", p.Descriptor.Name).Int("code", rc).Msg("service Start returned failure")
			continue
		}
		m.log.Info().Str("plugin", p.Descriptor.Name).Msg("service started")
		m.started = append(m.started, startedService{name: p.Descriptor.Name, symbols: p.Symbols})
	}
}

// StopAll invokes Stop on every service StartAll successfully started, in
// the reverse of the order it started them.
func (m *Manager) StopAll() {
	for i := len(m.started) - 1; i >= 0; i-- {
		svc := m.started[i]
		sym, err := svc.symbols.Lookup(abi.SymbolStop)
		if err != nil {
			m.log.Error().Str("plugin", svc.name).Err(err).Msg("service has no Stop symbol")
			continue
		}
		stopFn, ok := sym.(func() int)
		if !ok {
			if fn, ok2 := sym.(abi.StopFunc); ok2 {
				stopFn = fn
			} else {
				m.log.Error().Str("plugin", svc.name).Msg("Stop has unexpected signature")
				continue
			}
		}
		if rc := stopFn(); rc != 0 {
			m.log.Error().Str("plugin", svc.name).Int("code", rc).Msg("service Stop returned failure")
		}
	}
	m.started = nil
}

// RunSkill invokes a Skill-kind plugin's Run entry point directly. Callers
// use this to invoke on-demand work; Skills are never started by StartAll.
func RunSkill(p *loader.LoadedPlugin, table *abi.CapabilityTable) (int, error) {
	if p.Descriptor.LibraryType != abi.LibraryTypeSkill {
		return -1, fmt.Errorf("plugin %q is not a Skill", p.Descriptor.Name)
	}
	sym, err := p.Symbols.Lookup(abi.SymbolRun)
	if err != nil {
		return -1, fmt.Errorf("plugin %q has no Run symbol: %w", p.Descriptor.Name, err)
	}
	runFn, ok := sym.(func(*abi.CapabilityTable, string) int)
	if !ok {
		if fn, ok2 := sym.(abi.RunFunc); ok2 {
			runFn = fn
		} else {
			return -1, fmt.Errorf("plugin %q Run has unexpected signature", p.Descriptor.Name)
		}
	}
	return runFn(table, p.Attrs), nil
}
