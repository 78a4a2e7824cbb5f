// Package blackboard implements a typed, concurrent, observable key/value
// store plus the capability-shaped facade that exposes it across the
// plugin ABI.
package blackboard

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// subscriber is a single (key, component) registration.
type subscriber struct {
	component string
	callback  func(key string, userData interface{})
	userData  interface{}
}

// Store is a single process-wide typed key/value store with per-key
// subscription. It is not a Go singleton by construction: callers that
// want a global blackboard wrap one instance behind a package-level
// variable (see Default in facade.go); tests construct independent Stores
// with New so they can run in parallel.
//
// Every operation (get, set, subscribe, unsubscribe, reset, size,
// as_json_schema) takes the same mutex, and notifications fire while that
// mutex is held; see "Synchronous notification under the global lock".
// Subscriber callbacks MUST NOT call back into the Store; doing so
// deadlocks on mu.
type Store struct {
	mu      sync.Mutex
	running bool
	entries map[string]Value
	// subs preserves registration order per key so notification fan-out
	// fires callbacks in subscription order.
	subs map[string][]subscriber
}

// New constructs a Store in the stopped state.
func New() *Store {
	return &Store{}
}

type attrEntry struct {
	Key   string    `yaml:"key"`
	Value yaml.Node `yaml:"value"`
}

// Start transitions the store into the running state, optionally seeding
// it from a YAML attributes document.
//
// Each entry's value discriminates to a scalar Kind by YAML tag: strings
// to KindString, integers to KindInt32, bare floats to KindFloat32,
// booleans to KindBool. There is no YAML shape that discriminates to
// KindFloat64 from attrs: an untagged value enum tried in Float(f32),
// Double(f64) order would always match Float first for a bare decimal
// scalar, so Double is only reachable via the SetFloat64 capability, never
// from a config document. This implementation mirrors that behavior
// rather than "fixing" it.
func (s *Store) Start(attrsYAML string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}

	entries := make(map[string]Value)
	if attrsYAML != "" {
		var raw []attrEntry
		if err := yaml.Unmarshal([]byte(attrsYAML), &raw); err != nil {
			return fmt.Errorf("%w: %v", ErrBadAttributes, err)
		}
		for _, a := range raw {
			v, err := attrValue(a.Value)
			if err != nil {
				return fmt.Errorf("%w: key %q: %v", ErrBadAttributes, a.Key, err)
			}
			entries[a.Key] = v
		}
	}

	s.running = true
	s.entries = entries
	if s.subs == nil {
		s.subs = make(map[string][]subscriber)
	}
	// Fire notifications for the seeded entries as an ordinary set would;
	// no subscribers exist yet so these are no-ops.
	for key := range entries {
		s.notifyLocked(key)
	}
	return nil
}

func attrValue(node yaml.Node) (Value, error) {
	switch node.Tag {
	case "!!str":
		return stringValue(node.Value), nil
	case "!!int":
		var i int32
		if err := node.Decode(&i); err != nil {
			return Value{}, err
		}
		return int32Value(i), nil
	case "!!float":
		var f float32
		if err := node.Decode(&f); err != nil {
			return Value{}, err
		}
		return float32Value(f), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, err
		}
		return boolValue(b), nil
	default:
		return Value{}, fmt.Errorf("unsupported attribute shape %q", node.Tag)
	}
}

// Stop drops all entries and all subscribers. Subscribers are not
// notified of the teardown. Idempotent.
func (s *Store) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.entries = nil
	s.subs = nil
	return nil
}

// Size returns the number of entries, or an error if the store is not
// running.
func (s *Store) Size() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return 0, ErrNotRunning
	}
	return len(s.entries), nil
}

// Reset empties entries while preserving subscribers.
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrNotRunning
	}
	s.entries = make(map[string]Value)
	return nil
}

func (s *Store) setLocked(key string, v Value) error {
	if !s.running {
		return ErrNotRunning
	}
	if !utf8.ValidString(key) || key == "" {
		return ErrNullInput
	}
	s.entries[key] = v
	s.notifyLocked(key)
	return nil
}

func (s *Store) getLocked(key string, want Kind) (Value, error) {
	if !s.running {
		return Value{}, ErrNotRunning
	}
	v, ok := s.entries[key]
	if !ok {
		return Value{}, ErrKeyNotFound
	}
	if v.Kind() != want {
		return Value{}, ErrTypeMismatch
	}
	return v, nil
}

// SetString creates or overwrites key with a string value.
func (s *Store) SetString(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, stringValue(value))
}

// GetString returns the current string value of key.
func (s *Store) GetString(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.getLocked(key, KindString)
	if err != nil {
		return "", err
	}
	return v.str, nil
}

// SetInt32 creates or overwrites key with an int32 value.
func (s *Store) SetInt32(key string, value int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, int32Value(value))
}

// GetInt32 returns the current int32 value of key.
func (s *Store) GetInt32(key string) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.getLocked(key, KindInt32)
	if err != nil {
		return 0, err
	}
	return v.i32, nil
}

// SetFloat32 creates or overwrites key with a float32 value.
func (s *Store) SetFloat32(key string, value float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, float32Value(value))
}

// GetFloat32 returns the current float32 value of key.
func (s *Store) GetFloat32(key string) (float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.getLocked(key, KindFloat32)
	if err != nil {
		return 0, err
	}
	return v.f32, nil
}

// SetFloat64 creates or overwrites key with a float64 value.
func (s *Store) SetFloat64(key string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, float64Value(value))
}

// GetFloat64 returns the current float64 value of key.
func (s *Store) GetFloat64(key string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.getLocked(key, KindFloat64)
	if err != nil {
		return 0, err
	}
	return v.f64, nil
}

// SetBool creates or overwrites key with a bool value.
func (s *Store) SetBool(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(key, boolValue(value))
}

// GetBool returns the current bool value of key.
func (s *Store) GetBool(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := s.getLocked(key, KindBool)
	if err != nil {
		return false, err
	}
	return v.b, nil
}

// Subscribe registers (key, component) -> (callback, userData). A
// duplicate registration of the same pair is a no-op; a nil callback is
// rejected with ErrNullInput. There is no requirement that key already
// exist: the subscription fires on any future set for that key.
func (s *Store) Subscribe(key, component string, callback func(key string, userData interface{}), userData interface{}) error {
	if callback == nil {
		return ErrNullInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrNotRunning
	}
	if s.subs == nil {
		s.subs = make(map[string][]subscriber)
	}
	for _, sub := range s.subs[key] {
		if sub.component == component {
			return nil
		}
	}
	s.subs[key] = append(s.subs[key], subscriber{
		component: component,
		callback:  callback,
		userData:  userData,
	})
	return nil
}

// Unsubscribe removes the (key, component) registration, if any.
func (s *Store) Unsubscribe(key, component string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrNotRunning
	}
	list := s.subs[key]
	for i, sub := range list {
		if sub.component == component {
			s.subs[key] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

// notifyLocked invokes every subscriber for key in registration order.
// Callers must hold mu: this happens while the lock is held, so a callback
// that calls back into the Store deadlocks.
func (s *Store) notifyLocked(key string) {
	for _, sub := range s.subs[key] {
		func(sub subscriber) {
			defer func() {
				if r := recover(); r != nil {
					// Panics crossing the ABI boundary are caught and
					// logged, not propagated.
					log.Error().
						Str("component", "blackboard").
						Str("key", key).
						Str("subscriber", sub.component).
						Interface("panic", r).
						Msg("subscriber callback panicked")
				}
			}()
			sub.callback(key, sub.userData)
		}(sub)
	}
}
