// axd is a local macOS UI-automation agent: a long-running HTTP/JSON service
// that exposes accessibility, input-injection, and screen-capture facilities
// scoped to one target application.
//
//	axd run <app> [--port N] [--launch] [--config path]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"axd/internal/config"
	"axd/internal/dispatch"
	"axd/internal/lifecycle"
	"axd/internal/logging"
	"axd/internal/platform"
	"axd/internal/watcher"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Println("axd " + dispatch.Version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`axd - macOS UI-automation agent

USAGE:
    axd run <app> [options]

OPTIONS:
    --host string     bind address (default 127.0.0.1)
    --port int        bind port, 0 for an ephemeral port (default 7676)
    --launch          launch <app> instead of attaching to a running instance
    --config path     optional TOML config file

    axd version        print the build version
    axd help            show this message`)
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	host := fs.String("host", "", "bind address (overrides config)")
	port := fs.Int("port", -1, "bind port, 0 for ephemeral (overrides config)")
	launch := fs.Bool("launch", false, "launch the app instead of attaching")
	configPath := fs.String("config", "", "path to a TOML config file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: axd run <app> [options]")
		os.Exit(1)
	}
	appSpec := fs.Arg(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "axd: load config: %v\n", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port >= 0 {
		cfg.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "axd: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "axd: build logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	defer logger.Sync()

	if *configPath != "" || fileExists(config.ConfigPath()) {
		watchPath := *configPath
		if watchPath == "" {
			watchPath = config.ConfigPath()
		}
		cw, werr := watcher.New(watchPath, func(reloaded *config.Config) {
			if lerr := logger.SetLevel(reloaded.LogLevel); lerr != nil {
				logger.Warn("config reload: invalid log_level")
			}
		})
		if werr == nil {
			if serr := cw.Start(); serr == nil {
				defer cw.Stop()
			}
		}
	}

	executor := platform.NewMainThreadExecutor()
	defer executor.Close()

	adapters := platform.Adapters{
		Process:     platform.NewProcessDiscovery(),
		Global:      platform.NewGlobalInput(),
		Targeted:    platform.NewTargetedInput(),
		Accessible:  platform.NewAccessibility(),
		Capture:     platform.NewScreenCapture(),
		Permissions: platform.NewPermissionProbe(),
		Executor:    executor,
	}

	coordinator, err := lifecycle.New(cfg, logger, adapters, lifecycle.Options{
		AppSpec: appSpec,
		Host:    cfg.Host,
		Port:    cfg.Port,
		Launch:  *launch,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "axd: %v\n", err)
		os.Exit(1)
	}

	if err := coordinator.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "axd: %v\n", err)
		os.Exit(1)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
