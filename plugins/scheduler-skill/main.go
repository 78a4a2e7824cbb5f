// Command scheduler-skill is a Skill plugin: it does nothing at startup
// and is only invoked on demand via Run. Given a cron expression in its
// attributes, it computes the next few fire times and publishes them back
// onto the blackboard as a JSON array, through the "blackboard" capability
// table it requires.
//
// Exists to give github.com/robfig/cron/v3 a concrete home and to
// demonstrate a Skill-kind plugin, which the runtime never auto-starts.
package main

import (
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"plugboard.dev/plugboard/internal/abi"
	"plugboard.dev/plugboard/internal/logger"
)

var log = logger.Component("scheduler-skill")

type attrs struct {
	Expression string `yaml:"expression"`
	ResultKey  string `yaml:"result_key"`
	Count      int    `yaml:"count"`
}

const (
	defaultResultKey = "scheduler_next_runs"
	defaultCount     = 5
)

// Summary returns this plugin's Descriptor.
func Summary() string {
	d := abi.Descriptor{
		Name:        "scheduler-skill",
		Version:     "0.1.0",
		LibraryType: abi.LibraryTypeSkill,
		Requires:    []string{"blackboard"},
	}
	b, _ := json.Marshal(d)
	return string(b)
}

func parseAttrs(attrsYAML string) attrs {
	a := attrs{ResultKey: defaultResultKey, Count: defaultCount}
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
		case "expression":
			a.Expression = e.Value
		case "result_key":
			a.ResultKey = e.Value
		}
	}
	return a
}

// Run parses the configured cron expression, computes the next Count fire
// times from now, and writes them to the blackboard as a JSON array of
// RFC3339 timestamps under ResultKey.
func Run(caps *abi.CapabilityTable, attrsYAML string) int {
	a := parseAttrs(attrsYAML)
	if a.Expression == "" {
		log.Error().Msg("scheduler-skill requires an \"expression\" attribute")
		return -1
	}

	schedule, err := cron.ParseStandard(a.Expression)
	if err != nil {
		log.Error().Err(err).Str("expression", a.Expression).Msg("invalid cron expression")
		return -1
	}

	count := a.Count
	if count <= 0 {
		count = defaultCount
	}
	times := make([]string, 0, count)
	t := time.Now()
	for i := 0; i < count; i++ {
		t = schedule.Next(t)
		times = append(times, t.Format(time.RFC3339))
	}

	payload, err := json.Marshal(times)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode schedule")
		return -1
	}

	setFn, ok := capFunc[func(string, string) int](caps, "blackboard_set_string")
	if !ok {
		log.Error().Msg("blackboard_set_string capability unavailable")
		return -1
	}
	return setFn(a.ResultKey, string(payload))
}

func capFunc[T any](caps *abi.CapabilityTable, name string) (T, bool) {
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

func main() {}
