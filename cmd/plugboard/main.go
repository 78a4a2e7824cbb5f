// Command plugboard boots the runtime: it reads a library config, loads the
// plugins it names, wires their capability tables, starts Services in
// reverse load order, and runs until an OS signal asks it to stop.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"plugboard.dev/plugboard/internal/blackboard"
	"plugboard.dev/plugboard/internal/dispatcher"
	"plugboard.dev/plugboard/internal/lifecycle"
	"plugboard.dev/plugboard/internal/loader"
	"plugboard.dev/plugboard/internal/logger"
	"plugboard.dev/plugboard/internal/resolver"
	"plugboard.dev/plugboard/internal/rtconfig"
)

func main() {
	configPath := flag.String("config", "", "path to the runtime library config (YAML)")
	pluginDir := flag.String("plugin-dir", getEnv("PLUGBOARD_PLUGIN_DIR", "./plugins"), "directory unqualified library names resolve against")
	logLevel := flag.String("log-level", getEnv("PLUGBOARD_LOG_LEVEL", "info"), "zerolog level (debug, info, warn, error)")
	pretty := flag.Bool("pretty", os.Getenv("PLUGBOARD_PRETTY") == "true", "use a human-readable console log writer instead of JSON")
	dispatchKey := flag.String("dispatch-key", getEnv("PLUGBOARD_DISPATCH_KEY", dispatcher.DefaultKey), "blackboard key the event dispatcher subscribes to")
	flag.Parse()

	logger.Init(*logLevel, *pretty)

	path := *configPath
	if path == "" {
		path = os.Getenv("PLUGBOARD_CONFIG")
	}
	if path == "" && flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	if path == "" {
		log.Fatal().Msg("no config path given: pass --config, set PLUGBOARD_CONFIG, or pass it positionally")
	}

	cfg, err := rtconfig.Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("config", path).Msg("failed to load runtime config")
	}

	ld := loader.New(*pluginDir)
	plugins := ld.LoadAll(cfg.Libraries)
	if len(plugins) == 0 {
		log.Warn().Msg("no plugins loaded, nothing to run")
	}

	tables, err := resolver.ResolveAll(plugins)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve plugin dependencies")
	}

	mgr := lifecycle.New()
	mgr.StartAll(plugins, tables)

	disp := dispatcher.New(blackboard.Default.Store(), *dispatchKey, func(value string) {
		log.Info().Str("key", *dispatchKey).Str("value", value).Msg("dispatching project start event")
	})
	if err := disp.Start(); err != nil {
		log.Error().Err(err).Msg("event dispatcher failed to start")
	}

	log.Info().Int("plugins", len(plugins)).Msg("runtime started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	disp.Stop()
	mgr.StopAll()
	log.Info().Msg("shutdown complete")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
