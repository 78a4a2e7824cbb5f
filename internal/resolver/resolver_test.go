package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"plugboard.dev/plugboard/internal/abi"
	"plugboard.dev/plugboard/internal/blackboard"
	"plugboard.dev/plugboard/internal/loader"
)

type fakeResolver map[string]interface{}

func (f fakeResolver) Lookup(name string) (interface{}, error) {
	v, ok := f[name]
	if !ok {
		return nil, errors.New("symbol not found: " + name)
	}
	return v, nil
}

func TestResolveAllBuildsTableFromProvider(t *testing.T) {
	getFn := func(key string, out []byte) int { return 0 }

	provider := &loader.LoadedPlugin{
		Descriptor: abi.Descriptor{
			Name:     "blackboard",
			Provides: []abi.Provision{{Capability: "blackboard_get_string", Entry: "GetString"}},
		},
		Symbols: fakeResolver{"GetString": getFn},
	}
	consumer := &loader.LoadedPlugin{
		Descriptor: abi.Descriptor{Name: "cache-bridge", Requires: []string{"blackboard"}},
		Symbols:    fakeResolver{},
	}

	tables, err := ResolveAll([]*loader.LoadedPlugin{provider, consumer})
	require.NoError(t, err)

	consumerTable := tables["cache-bridge"]
	require.NotNil(t, consumerTable)
	capEntry, ok := consumerTable.Get("blackboard_get_string")
	require.True(t, ok)
	assert.NotNil(t, capEntry.Fn)

	providerTable := tables["blackboard"]
	assert.Equal(t, 0, providerTable.Len())
}

func TestResolveAllFailsOnMissingProvider(t *testing.T) {
	consumer := &loader.LoadedPlugin{
		Descriptor: abi.Descriptor{Name: "cache-bridge", Requires: []string{"blackboard"}},
		Symbols:    fakeResolver{},
	}
	_, err := ResolveAll([]*loader.LoadedPlugin{consumer})
	assert.Error(t, err)
}

func TestResolveAllFailsOnUnresolvedEntry(t *testing.T) {
	provider := &loader.LoadedPlugin{
		Descriptor: abi.Descriptor{
			Name:     "blackboard",
			Provides: []abi.Provision{{Capability: "blackboard_get_string", Entry: "Missing"}},
		},
		Symbols: fakeResolver{},
	}
	consumer := &loader.LoadedPlugin{
		Descriptor: abi.Descriptor{Name: "cache-bridge", Requires: []string{"blackboard"}},
		Symbols:    fakeResolver{},
	}
	_, err := ResolveAll([]*loader.LoadedPlugin{provider, consumer})
	assert.Error(t, err)
}

// Wires the blackboard's full declared provides list into a consumer's
// table, the way a real config with a blackboard provider would.
func TestResolveAllWiresFullBlackboardProvidesList(t *testing.T) {
	f := blackboard.NewFacade(blackboard.New())
	symbols := fakeResolver{
		"BlackboardStart":        f.Start,
		"BlackboardStop":         f.Stop,
		"BlackboardReset":        f.Reset,
		"BlackboardSize":         f.Size,
		"BlackboardGetString":    f.GetString,
		"BlackboardSetString":    f.SetString,
		"BlackboardGetInt":       f.GetInt,
		"BlackboardSetInt":       f.SetInt,
		"BlackboardGetFloat":     f.GetFloat,
		"BlackboardSetFloat":     f.SetFloat,
		"BlackboardGetDouble":    f.GetDouble,
		"BlackboardSetDouble":    f.SetDouble,
		"BlackboardGetBool":      f.GetBool,
		"BlackboardSetBool":      f.SetBool,
		"BlackboardAsJSONSchema": f.AsJSONSchema,
		"BlackboardSubscribe":    f.Subscribe,
		"BlackboardUnsubscribe":  f.Unsubscribe,
	}
	var provides []abi.Provision
	for capName, entry := range map[string]string{
		blackboard.CapStart:        "BlackboardStart",
		blackboard.CapStop:         "BlackboardStop",
		blackboard.CapReset:        "BlackboardReset",
		blackboard.CapSize:         "BlackboardSize",
		blackboard.CapGetString:    "BlackboardGetString",
		blackboard.CapSetString:    "BlackboardSetString",
		blackboard.CapGetInt:       "BlackboardGetInt",
		blackboard.CapSetInt:       "BlackboardSetInt",
		blackboard.CapGetFloat:     "BlackboardGetFloat",
		blackboard.CapSetFloat:     "BlackboardSetFloat",
		blackboard.CapGetDouble:    "BlackboardGetDouble",
		blackboard.CapSetDouble:    "BlackboardSetDouble",
		blackboard.CapGetBool:      "BlackboardGetBool",
		blackboard.CapSetBool:      "BlackboardSetBool",
		blackboard.CapAsJSONSchema: "BlackboardAsJSONSchema",
		blackboard.CapSubscribe:    "BlackboardSubscribe",
		blackboard.CapUnsubscribe:  "BlackboardUnsubscribe",
	} {
		provides = append(provides, abi.Provision{Capability: capName, Entry: entry})
	}

	provider := &loader.LoadedPlugin{
		Descriptor: abi.Descriptor{Name: "blackboard", LibraryType: abi.LibraryTypeService, Provides: provides},
		Symbols:    symbols,
	}
	consumer := &loader.LoadedPlugin{
		Descriptor: abi.Descriptor{Name: "consumer", Requires: []string{"blackboard"}},
		Symbols:    fakeResolver{},
	}

	tables, err := ResolveAll([]*loader.LoadedPlugin{provider, consumer})
	require.NoError(t, err)

	table := tables["consumer"]
	assert.Equal(t, len(provides), table.Len())

	setCap, ok := table.Get(blackboard.CapSetString)
	require.True(t, ok)

	// The wired capability is directly invokable against the live store.
	require.NoError(t, f.Store().Start(""))
	defer f.Store().Stop()
	setString, ok := setCap.Fn.(func(string, string) int)
	require.True(t, ok)
	assert.Equal(t, 0, setString("k", "v"))
	got, err := f.Store().GetString("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestResolveAllWithNoRequiresYieldsEmptyTable(t *testing.T) {
	plugin := &loader.LoadedPlugin{
		Descriptor: abi.Descriptor{Name: "standalone"},
		Symbols:    fakeResolver{},
	}
	tables, err := ResolveAll([]*loader.LoadedPlugin{plugin})
	require.NoError(t, err)
	assert.Equal(t, 0, tables["standalone"].Len())
}
