// Command cache-bridge is a Service plugin that requires "blackboard" and
// mirrors one blackboard key into Redis, in both directions: a write to
// the watched key is pushed to Redis, and the value found in Redis at
// startup seeds the blackboard key.
//
// This exists to exercise a plugin that consumes another plugin's
// capability table rather than exporting its own, and to give
// github.com/redis/go-redis/v9 a concrete home in the runtime.
package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"plugboard.dev/plugboard/internal/abi"
	"plugboard.dev/plugboard/internal/blackboard"
	"plugboard.dev/plugboard/internal/logger"
)

var log = logger.Component("cache-bridge")

type attrs struct {
	RedisAddr string `yaml:"redis_addr"`
	Key       string `yaml:"key"`
}

const (
	defaultRedisAddr = "localhost:6379"
	defaultKey       = "cache_sync"
	defaultDialTO    = 2 * time.Second
)

var (
	client    *redis.Client
	watchKey  = defaultKey
	caps      *abi.CapabilityTable
	component = "cache-bridge"
)

// Summary returns this plugin's Descriptor.
func Summary() string {
	d := abi.Descriptor{
		Name:        component,
		Version:     "0.1.0",
		LibraryType: abi.LibraryTypeService,
		Requires:    []string{"blackboard"},
	}
	b, _ := json.Marshal(d)
	return string(b)
}

func parseAttrs(attrsYAML string) attrs {
	a := attrs{RedisAddr: defaultRedisAddr, Key: defaultKey}
	if attrsYAML == "" {
		return a
	}
	type kv struct {
		Key   string `yaml:"key"`
		Value string `yaml:"value"`
	}
	var raw []kv
	if err := yaml.Unmarshal([]byte(attrsYAML), &raw); err != nil {
		log.Warn().Err(err).Msg("failed to parse attributes, using defaults")
		return a
	}
	for _, e := range raw {
		switch e.Key {
		case "redis_addr":
			a.RedisAddr = e.Value
		case "key":
			a.Key = e.Value
		}
	}
	return a
}

// Start connects to Redis, seeds the watched blackboard key from any
// existing Redis value, and subscribes to the key so future writes are
// mirrored out.
func Start(reqCaps *abi.CapabilityTable, attrsYAML string) int {
	caps = reqCaps
	a := parseAttrs(attrsYAML)
	watchKey = a.Key

	client = redis.NewClient(&redis.Options{Addr: a.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), defaultDialTO)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", a.RedisAddr).Msg("redis unreachable at startup, continuing without seed")
	} else if val, err := client.Get(ctx, watchKey).Result(); err == nil {
		if rc := setBlackboardString(watchKey, val); rc != 0 {
			log.Error().Str("key", watchKey).Int("code", rc).Msg("failed to seed blackboard from redis")
		}
	}

	subscribeFn, ok := capFunc[func(string, string, blackboard.SubscribeCallback, interface{}) int](blackboard.CapSubscribe)
	if !ok {
		log.Error().Msg("blackboard_subscribe capability unavailable")
		return -1
	}
	rc := subscribeFn(watchKey, component, onWatchedKeyChanged, nil)
	if rc != 0 {
		log.Error().Int("code", rc).Msg("failed to subscribe to watched key")
		return rc
	}
	return 0
}

// onWatchedKeyChanged is invoked synchronously from inside the blackboard's
// locked notification path (Store.notifyLocked), on the setter's own
// goroutine, while that goroutine still holds the store's mutex. Reading
// the key back here directly would call blackboard_get_string, which takes
// that same mutex, and deadlock: the lock is not reentrant and no other
// goroutine could ever release it. Deferring the read into its own
// goroutine moves the blackboard call off the setter's call stack; it
// blocks briefly until the setter's (e.g. Store.SetString's) deferred
// Unlock runs, then proceeds
// normally, matching the "must not call back into the blackboard
// synchronously" contract in the same way internal/dispatcher does.
func onWatchedKeyChanged(key string, _ interface{}) {
	go func() {
		value, ok := getBlackboardString(key)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), defaultDialTO)
		defer cancel()
		if err := client.Set(ctx, key, value, 0).Err(); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to mirror value to redis")
		}
	}()
}

// Stop closes the Redis client and unsubscribes.
func Stop() int {
	if unsubFn, ok := capFunc[func(string, string) int](blackboard.CapUnsubscribe); ok {
		unsubFn(watchKey, component)
	}
	if client != nil {
		_ = client.Close()
	}
	return 0
}

func capFunc[T any](name string) (T, bool) {
	var zero T
	if caps == nil {
		return zero, false
	}
	c, ok := caps.Get(name)
	if !ok {
		return zero, false
	}
	fn, ok := c.Fn.(T)
	return fn, ok
}

func setBlackboardString(key, value string) int {
	fn, ok := capFunc[func(string, string) int](blackboard.CapSetString)
	if !ok {
		return -1
	}
	return fn(key, value)
}

// getBlackboardString performs the two-call sizing read the ABI documents:
// a first call with a nil buffer to learn the required length, then a
// second call with a buffer of that size.
func getBlackboardString(key string) (string, bool) {
	fn, ok := capFunc[func(string, []byte) int](blackboard.CapGetString)
	if !ok {
		return "", false
	}
	need := fn(key, nil)
	if need <= 0 {
		return "", false
	}
	buf := make([]byte, need)
	if fn(key, buf) != need {
		return "", false
	}
	return string(buf[:need-1]), true
}

func main() {}
