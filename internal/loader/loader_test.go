package loader

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"plugboard.dev/plugboard/internal/abi"
	"plugboard.dev/plugboard/internal/rtconfig"
)

type fakeResolver map[string]interface{}

func (f fakeResolver) Lookup(name string) (interface{}, error) {
	v, ok := f[name]
	if !ok {
		return nil, errors.New("symbol not found: " + name)
	}
	return v, nil
}

func summaryFor(name, version string, kind abi.LibraryType) func() string {
	d := abi.Descriptor{Name: name, Version: version, LibraryType: kind}
	return func() string {
		b, _ := json.Marshal(d)
		return string(b)
	}
}

func TestPlatformPrefixExt(t *testing.T) {
	prefix, ext := platformPrefixExt()
	assert.NotEmpty(t, ext)
	_ = prefix
}

func TestResolvePathUsesExplicitPathWhenGiven(t *testing.T) {
	l := New("/plugins")
	path := l.ResolvePath(rtconfig.LibraryConfig{Name: "foo", Path: "/custom/foo.so"})
	assert.Equal(t, "/custom/foo.so", path)
}

func TestResolvePathFallsBackToPluginDir(t *testing.T) {
	l := New("/plugins")
	path := l.ResolvePath(rtconfig.LibraryConfig{Name: "foo"})
	assert.Contains(t, path, "/plugins/")
	assert.Contains(t, path, "foo")
}

func TestLoadAllSkipsOpenFailure(t *testing.T) {
	l := New("/plugins").WithOpenFunc(func(path string) (abi.SymbolResolver, error) {
		return nil, errors.New("boom")
	})
	loaded := l.LoadAll([]rtconfig.LibraryConfig{{Name: "broken"}})
	assert.Empty(t, loaded)
}

func TestLoadAllSkipsMissingSummary(t *testing.T) {
	l := New("/plugins").WithOpenFunc(func(path string) (abi.SymbolResolver, error) {
		return fakeResolver{}, nil
	})
	loaded := l.LoadAll([]rtconfig.LibraryConfig{{Name: "no-summary"}})
	assert.Empty(t, loaded)
}

func TestLoadAllDeduplicatesByDescriptorName(t *testing.T) {
	l := New("/plugins").WithOpenFunc(func(path string) (abi.SymbolResolver, error) {
		return fakeResolver{abi.SymbolSummary: summaryFor("dup", "1.0.0", abi.LibraryTypeService)}, nil
	})
	loaded := l.LoadAll([]rtconfig.LibraryConfig{{Name: "a"}, {Name: "b"}})
	require.Len(t, loaded, 1)
	assert.Equal(t, "dup", loaded[0].Descriptor.Name)
}

func TestLoadAllAcceptsNamedSummaryFunc(t *testing.T) {
	var named abi.SummaryFunc = summaryFor("named", "2.0.0", abi.LibraryTypeSkill)
	l := New("/plugins").WithOpenFunc(func(path string) (abi.SymbolResolver, error) {
		return fakeResolver{abi.SymbolSummary: named}, nil
	})
	loaded := l.LoadAll([]rtconfig.LibraryConfig{{Name: "x"}})
	require.Len(t, loaded, 1)
	assert.Equal(t, "named", loaded[0].Descriptor.Name)
	assert.Equal(t, abi.LibraryTypeSkill, loaded[0].Descriptor.LibraryType)
}

func TestLoadAllPassesAttributesYAML(t *testing.T) {
	l := New("/plugins").WithOpenFunc(func(path string) (abi.SymbolResolver, error) {
		return fakeResolver{abi.SymbolSummary: summaryFor("attrd", "1.0.0", abi.LibraryTypeService)}, nil
	})
	cfg := rtconfig.LibraryConfig{
		Name:       "attrd",
		Attributes: []rtconfig.AttrKV{{Key: "k", Value: "v"}},
	}
	loaded := l.LoadAll([]rtconfig.LibraryConfig{cfg})
	require.Len(t, loaded, 1)
	assert.Contains(t, loaded[0].Attrs, "k")
	assert.Contains(t, loaded[0].Attrs, "v")
}
