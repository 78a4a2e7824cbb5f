// Command blackboard is the Service plugin that exposes the runtime's
// process-wide blackboard over the capability-table ABI. It is built with
// `go build -buildmode=plugin` into libblackboard.so (or the platform
// equivalent) and loaded by name from a library config.
package main

import (
	"encoding/json"

	"plugboard.dev/plugboard/internal/abi"
	"plugboard.dev/plugboard/internal/blackboard"
)

var facade = blackboard.Default

// Summary returns this plugin's Descriptor as JSON.
func Summary() string {
	d := abi.Descriptor{
		Name:        "blackboard",
		Version:     "0.1.0",
		LibraryType: abi.LibraryTypeService,
		Provides:    provisionList(),
	}
	b, _ := json.Marshal(d)
	return string(b)
}

// entryByCapability maps each capability name to the exported Go symbol
// that implements it, so the resolver can look it up via plugin.Lookup.
var entryByCapability = map[string]string{
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
}

func provisionList() []abi.Provision {
	provides := make([]abi.Provision, 0, len(entryByCapability))
	for capName, entry := range entryByCapability {
		provides = append(provides, abi.Provision{Capability: capName, Entry: entry})
	}
	return provides
}

// Start boots the blackboard store with attrsYAML as its seed attributes.
// The capability table passed in is unused: this plugin requires nothing.
func Start(_ *abi.CapabilityTable, attrsYAML string) int {
	return facade.Start(nil, attrsYAML)
}

// Stop tears the blackboard down.
func Stop() int {
	return facade.Stop()
}

// The remaining exported symbols are the entries provisionList names; the
// resolver looks each one up by name and stores the resolved func value in
// the consuming plugin's CapabilityTable. They must be declared functions,
// not package-level func-typed variables: plugin.Lookup returns a pointer
// to a variable but the func value itself for a function, and the ABI
// wires func values.

func BlackboardStart(caps *abi.CapabilityTable, attrsYAML string) int {
	return Start(caps, attrsYAML)
}

func BlackboardStop() int { return Stop() }

func BlackboardReset() int { return facade.Reset() }

func BlackboardSize() int { return facade.Size() }

func BlackboardGetString(key string, out []byte) int { return facade.GetString(key, out) }

func BlackboardSetString(key, value string) int { return facade.SetString(key, value) }

func BlackboardGetInt(key string, out *int32) int { return facade.GetInt(key, out) }

func BlackboardSetInt(key string, value int32) int { return facade.SetInt(key, value) }

func BlackboardGetFloat(key string, out *float32) int { return facade.GetFloat(key, out) }

func BlackboardSetFloat(key string, value float32) int { return facade.SetFloat(key, value) }

func BlackboardGetDouble(key string, out *float64) int { return facade.GetDouble(key, out) }

func BlackboardSetDouble(key string, value float64) int { return facade.SetDouble(key, value) }

func BlackboardGetBool(key string, out *bool) int { return facade.GetBool(key, out) }

func BlackboardSetBool(key string, value bool) int { return facade.SetBool(key, value) }

func BlackboardAsJSONSchema(out []byte) int { return facade.AsJSONSchema(out) }

func BlackboardSubscribe(key, component string, cb blackboard.SubscribeCallback, userData interface{}) int {
	return facade.Subscribe(key, component, cb, userData)
}

func BlackboardUnsubscribe(key, component string) int { return facade.Unsubscribe(key, component) }

func main() {}
