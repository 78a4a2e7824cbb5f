package blackboard

import "plugboard.dev/plugboard/internal/abi"

// Capability names exposed over the ABI. These are the exact strings a
// consuming plugin's Requires/provides wiring looks up with
// CapabilityTable.Get.
const (
	CapStart        = "blackboard_start"
	CapStop         = "blackboard_stop"
	CapReset        = "blackboard_reset"
	CapSize         = "blackboard_size"
	CapGetString    = "blackboard_get_string"
	CapSetString    = "blackboard_set_string"
	CapGetInt       = "blackboard_get_int"
	CapSetInt       = "blackboard_set_int"
	CapGetFloat     = "blackboard_get_float"
	CapSetFloat     = "blackboard_set_float"
	CapGetDouble    = "blackboard_get_double"
	CapSetDouble    = "blackboard_set_double"
	CapGetBool      = "blackboard_get_bool"
	CapSetBool      = "blackboard_set_bool"
	CapAsJSONSchema = "blackboard_as_json_schema"
	CapSubscribe    = "blackboard_subscribe"
	CapUnsubscribe  = "blackboard_unsubscribe"
)

// SubscribeCallback is the signature subscribers register with
// BlackboardSubscribe: a (key, user_data) pair, with no meaningful return
// value since the caller ignores it.
type SubscribeCallback func(key string, userData interface{})

// Facade exposes a Store through capability-shaped, int-returning
// functions: the thing that actually gets wired into a CapabilityTable and
// handed to consuming plugins.
type Facade struct {
	store *Store
}

// NewFacade wraps store in a Facade.
func NewFacade(store *Store) *Facade {
	return &Facade{store: store}
}

// Store returns the Facade's underlying Store. It exists for runtime-internal
// collaborators (the event dispatcher) that need to subscribe directly
// rather than cross the capability-table ABI a loaded plugin would use.
func (f *Facade) Store() *Store {
	return f.store
}

// Default is the process-wide blackboard instance the runtime's own
// blackboard plugin starts and that the event dispatcher subscribes
// against, per the "Global singleton blackboard" design note. Production
// code uses it; tests construct their own blackboard.New()-backed Facade
// instead so they can run in parallel.
var Default = NewFacade(New())

func (f *Facade) Start(_ *abi.CapabilityTable, attrsYAML string) int {
	return statusCode(f.store.Start(attrsYAML))
}

func (f *Facade) Stop() int {
	return statusCode(f.store.Stop())
}

func (f *Facade) Reset() int {
	return statusCode(f.store.Reset())
}

// Size returns the entry count, or a negative value on error.
func (f *Facade) Size() int {
	n, err := f.store.Size()
	if err != nil {
		return -1
	}
	return n
}

// GetString implements the two-call sizing idiom: a nil out returns the
// required byte length including the trailing NUL; a non-nil out of
// sufficient length is filled with the value's bytes plus a trailing NUL
// and the same length is returned. A too-small out is left untouched and
// the function still returns the required length so the caller can retry.
func (f *Facade) GetString(key string, out []byte) int {
	v, err := f.store.GetString(key)
	if err != nil {
		return -1
	}
	need := len(v) + 1
	if out == nil {
		return need
	}
	if len(out) < need {
		return need
	}
	copy(out, v)
	out[len(v)] = 0
	return need
}

func (f *Facade) SetString(key, value string) int {
	return statusCode(f.store.SetString(key, value))
}

func (f *Facade) GetInt(key string, out *int32) int {
	v, err := f.store.GetInt32(key)
	if err != nil {
		return -1
	}
	*out = v
	return 0
}

func (f *Facade) SetInt(key string, value int32) int {
	return statusCode(f.store.SetInt32(key, value))
}

func (f *Facade) GetFloat(key string, out *float32) int {
	v, err := f.store.GetFloat32(key)
	if err != nil {
		return -1
	}
	*out = v
	return 0
}

func (f *Facade) SetFloat(key string, value float32) int {
	return statusCode(f.store.SetFloat32(key, value))
}

func (f *Facade) GetDouble(key string, out *float64) int {
	v, err := f.store.GetFloat64(key)
	if err != nil {
		return -1
	}
	*out = v
	return 0
}

func (f *Facade) SetDouble(key string, value float64) int {
	return statusCode(f.store.SetFloat64(key, value))
}

func (f *Facade) GetBool(key string, out *bool) int {
	v, err := f.store.GetBool(key)
	if err != nil {
		return -1
	}
	*out = v
	return 0
}

func (f *Facade) SetBool(key string, value bool) int {
	return statusCode(f.store.SetBool(key, value))
}

// AsJSONSchema follows the same two-call sizing idiom as GetString.
func (f *Facade) AsJSONSchema(out []byte) int {
	doc, err := f.store.AsJSONSchema()
	if err != nil {
		return -1
	}
	need := len(doc) + 1
	if out == nil {
		return need
	}
	if len(out) < need {
		return need
	}
	copy(out, doc)
	out[len(doc)] = 0
	return need
}

func (f *Facade) Subscribe(key, component string, callback SubscribeCallback, userData interface{}) int {
	if callback == nil {
		return -1
	}
	cb := func(key string, userData interface{}) { callback(key, userData) }
	return statusCode(f.store.Subscribe(key, component, cb, userData))
}

func (f *Facade) Unsubscribe(key, component string) int {
	return statusCode(f.store.Unsubscribe(key, component))
}

// CapabilityTable builds the fixed-capacity table of every blackboard
// capability this Facade exposes, ready to hand to a consuming plugin
// that Requires "blackboard".
func (f *Facade) CapabilityTable() *abi.CapabilityTable {
	t := &abi.CapabilityTable{}
	t.Add(abi.NewCapability(CapStart, abi.StartFunc(func(caps *abi.CapabilityTable, attrs string) int { return f.Start(caps, attrs) })))
	t.Add(abi.NewCapability(CapStop, abi.StopFunc(f.Stop)))
	t.Add(abi.NewCapability(CapReset, abi.StopFunc(f.Reset)))
	t.Add(abi.NewCapability(CapSize, abi.StopFunc(f.Size)))
	t.Add(abi.NewCapability(CapGetString, f.GetString))
	t.Add(abi.NewCapability(CapSetString, f.SetString))
	t.Add(abi.NewCapability(CapGetInt, f.GetInt))
	t.Add(abi.NewCapability(CapSetInt, f.SetInt))
	t.Add(abi.NewCapability(CapGetFloat, f.GetFloat))
	t.Add(abi.NewCapability(CapSetFloat, f.SetFloat))
	t.Add(abi.NewCapability(CapGetDouble, f.GetDouble))
	t.Add(abi.NewCapability(CapSetDouble, f.SetDouble))
	t.Add(abi.NewCapability(CapGetBool, f.GetBool))
	t.Add(abi.NewCapability(CapSetBool, f.SetBool))
	t.Add(abi.NewCapability(CapAsJSONSchema, f.AsJSONSchema))
	t.Add(abi.NewCapability(CapSubscribe, f.Subscribe))
	t.Add(abi.NewCapability(CapUnsubscribe, f.Unsubscribe))
	return t
}
