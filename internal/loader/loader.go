// Package loader implements the plugin loader: given an ordered list of
// rtconfig.LibraryConfig entries, it resolves each to a shared-object
// path, opens it, reads its Plugin Descriptor off the Summary symbol, and
// deduplicates by descriptor name.
//
// Uses the standard library's plugin package to open Go plugins and look
// up a well-known factory symbol, generalized to the capability-table ABI
// instead of a single PluginHandler interface.
package loader

import (
	"fmt"
	"path/filepath"
	"plugin"
	"runtime"

	"github.com/rs/zerolog"
	"plugboard.dev/plugboard/internal/abi"
	"plugboard.dev/plugboard/internal/logger"
	"plugboard.dev/plugboard/internal/rtconfig"
)

// LoadedPlugin is a plugin image the Loader has opened and described.
type LoadedPlugin struct {
	Descriptor abi.Descriptor
	Symbols    abi.SymbolResolver
	Path       string
	Attrs      string // pre-serialized YAML attributes document for Start/Run
}

// openFunc abstracts plugin.Open so tests can substitute an in-process
// fake image without building a real .so file.
type openFunc func(path string) (abi.SymbolResolver, error)

// Loader discovers, opens, and describes plugins named in a runtime
// config.
type Loader struct {
	pluginDir string
	open      openFunc
	log       zerolog.Logger
}

type pluginAdapter struct{ p *plugin.Plugin }

func (a pluginAdapter) Lookup(name string) (interface{}, error) {
	return a.p.Lookup(name)
}

func openSharedObject(path string) (abi.SymbolResolver, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return pluginAdapter{p}, nil
}

// New creates a Loader that resolves unqualified library names under
// pluginDir, using the platform's native shared-object convention.
func New(pluginDir string) *Loader {
	return &Loader{
		pluginDir: pluginDir,
		open:      openSharedObject,
		log:       logger.Component("loader"),
	}
}

// WithOpenFunc overrides how plugin images are opened. Exposed for tests.
func (l *Loader) WithOpenFunc(open openFunc) *Loader {
	l.open = open
	return l
}

// platformPrefixExt returns the shared-object filename prefix and
// extension for the running platform.
func platformPrefixExt() (prefix, ext string) {
	switch runtime.GOOS {
	case "darwin":
		return "lib", ".dylib"
	case "windows":
		return "", ".dll"
	default:
		return "lib", ".so"
	}
}

// ResolvePath computes the shared-object path for a library config entry:
// the explicit path if given, otherwise <pluginDir>/<prefix><name><ext>.
func (l *Loader) ResolvePath(cfg rtconfig.LibraryConfig) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	prefix, ext := platformPrefixExt()
	return filepath.Join(l.pluginDir, prefix+cfg.Name+ext)
}

// LoadAll loads every library named in configs, in order. A library that
// fails to open, or whose Summary symbol fails to resolve or parse, is
// logged and skipped rather than aborting the whole load. Plugins are
// deduplicated by descriptor name: first load wins, later duplicates are
// logged and dropped.
func (l *Loader) LoadAll(configs []rtconfig.LibraryConfig) []*LoadedPlugin {
	var loaded []*LoadedPlugin
	seen := make(map[string]bool, len(configs))

	for _, cfg := range configs {
		path := l.ResolvePath(cfg)
		lp, err := l.loadOne(cfg, path)
		if err != nil {
			l.log.Error().Str("library", cfg.Name).Str("path", path).Err(err).Msg("failed to load plugin")
			continue
		}
		if seen[lp.Descriptor.Name] {
			l.log.Warn().Str("library", lp.Descriptor.Name).Msg("duplicate plugin name, dropping later load")
			continue
		}
		seen[lp.Descriptor.Name] = true
		loaded = append(loaded, lp)
		l.log.Info().
			Str("name", lp.Descriptor.Name).
			Str("version", lp.Descriptor.Version).
			Str("kind", string(lp.Descriptor.LibraryType)).
			Int("capabilities", len(lp.Descriptor.Provides)).
			Msg("loaded plugin")
	}
	return loaded
}

func (l *Loader) loadOne(cfg rtconfig.LibraryConfig, path string) (*LoadedPlugin, error) {
	resolver, err := l.open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	summarySym, err := resolver.Lookup(abi.SymbolSummary)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", abi.SymbolSummary, err)
	}
	summaryFn, ok := summarySym.(func() string)
	if !ok {
		if fn, ok2 := summarySym.(abi.SummaryFunc); ok2 {
			summaryFn = fn
		} else {
			return nil, fmt.Errorf("%s has unexpected signature", abi.SymbolSummary)
		}
	}

	descriptor, err := abi.ParseDescriptor(summaryFn())
	if err != nil {
		return nil, fmt.Errorf("parsing descriptor: %w", err)
	}

	attrs, err := cfg.AttributesYAML()
	if err != nil {
		return nil, err
	}

	return &LoadedPlugin{
		Descriptor: descriptor,
		Symbols:    resolver,
		Path:       path,
		Attrs:      attrs,
	}, nil
}
