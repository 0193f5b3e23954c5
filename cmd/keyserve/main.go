// Copyright 2025 The Keyserve Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the predictive-text server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

Keyserve predicts words for soft keyboards while tolerating fat-finger
mistakes: neighbouring keys, a missed keystroke or an extra one. It reads a
precompiled dictionary combining a bloom filter with a prefix trie, mutates
what was typed into the prefixes the user probably meant, and ranks the
dictionary words found by edit distance and frequency.

# Usage

Start the server with default settings:

	keyserve

Use a custom data directory and enable debug mode:

	keyserve -data /path/to/dicts -d

Query predictions for whole words interactively:

	keyserve -c -limit 10

Replay keystrokes on a QWERTY layout, with '<' as backspace:

	keyserve -t

The data directory holds one compiled dictionary per language, named
<language>.dict (en.dict, fr.dict, ...).

# Configuration

Runtime configuration is managed through a TOML file:

	[engine]
	max_candidates = 24
	cache_size = 2048

	[layout]
	proximity = 1.2

	[dict]
	data_dir = "data/"
	default_language = "en"

The config file is created with defaults if it doesn't exist. In server mode
edits to the engine and layout sections apply without restart.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. The host sends the
keyboard geometry, a language and then keystrokes:

	{"t": "layout", "kw": 30, "kh": 40, "keys": [...]}
	{"t": "lang", "lang": "en"}
	{"t": "key", "code": 104, "x": 112.5, "y": 60}

and receives a candidate list after each keystroke:

	{"t": "candidates", "c": [["hello", "hello"], ["help", "help"]]}

See package server for the full message set.

# Command Line Flags

	-data string
	    Directory containing compiled dictionaries (default from config)
	-lang string
	    Language to load at startup in CLI modes (default from config)
	-config string
	    Path to a config file
	-reset-config
	    Overwrite the default config file with defaults and exit
	-d  Enable debug mode with detailed logging
	-c  Run the word query CLI instead of the server
	-t  Run the keystroke replay CLI instead of the server
	-limit int
	    Number of predictions to print in CLI mode
	-version
	    Show current version

The application resolves data paths relative to the executable location,
supporting both development and production deployments.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/keyserve/internal/cli"
	"github.com/bastiangx/keyserve/internal/utils"
	"github.com/bastiangx/keyserve/pkg/config"
	"github.com/bastiangx/keyserve/pkg/dictionary"
	"github.com/bastiangx/keyserve/pkg/layout"
	"github.com/bastiangx/keyserve/pkg/server"
	"github.com/bastiangx/keyserve/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "keyserve"
	gh      = "https://github.com/bastiangx/keyserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main calls other packages to initialize the server or CLI inputs.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dataDir := flag.String("data", "", "Directory containing the compiled dictionaries")
	language := flag.String("lang", "", "Language to load in CLI modes")
	configFile := flag.String("config", "", "Path to a config file")
	resetConfig := flag.Bool("reset-config", false, "Overwrite the default config file with defaults and exit")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run word query CLI -- useful for testing and debugging")
	typingMode := flag.Bool("t", false, "Run keystroke replay CLI -- useful for testing layouts")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of predictions to print")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *resetConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to reset config: %v", err)
		}
		log.Print("config reset", "path", config.GetActiveConfigPath(""))
		os.Exit(0)
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Fatalf("Failed to initialize path resolver: %v", err)
	}
	if *debugMode {
		for k, v := range pathResolver.GetRuntimeInfo() {
			log.Debug("runtime", k, v)
		}
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))

	if *dataDir == "" {
		*dataDir = appConfig.Dict.DataDir
	}
	if *language == "" {
		*language = appConfig.Dict.DefaultLanguage
	}

	resolvedDataDir, err := pathResolver.GetDataDir(*dataDir)
	if err != nil {
		log.Fatalf("Failed to resolve data dir:(%v)", err)
	}
	log.Debugf("Using data dir at: %s", resolvedDataDir)
	loader := dictionary.NewLoader(resolvedDataDir)

	qwerty := layout.QWERTY(appConfig.Layout.KeyWidth, appConfig.Layout.KeyHeight)

	// CLI would be mainly used for testing and dbg purposes.
	// Any new features or changes should be tested in CLI mode first.
	switch {
	case *cliMode:
		log.SetReportTimestamp(false)
		store, err := loader.Load(*language)
		if err != nil {
			log.Fatalf("Failed to load %s dictionary: %v", *language, err)
		}
		adj := layout.FromParams(qwerty, appConfig.Layout.Proximity)
		completer := suggest.NewCompleter(store, adj, appConfig.Engine.CacheSize)

		inputHandler := cli.NewInputHandler(completer, *limit, appConfig.CLI.ShowDetails)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return

	case *typingMode:
		log.SetReportTimestamp(false)
		buf, err := loader.Read(*language)
		if err != nil {
			log.Fatalf("Failed to read %s dictionary: %v", *language, err)
		}
		typing := cli.NewTypingHandler(appConfig.SessionOptions(), qwerty)
		if err := typing.SetLanguage(*language, buf); err != nil {
			log.Fatalf("Failed to load %s dictionary: %v", *language, err)
		}
		if err := typing.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := server.NewServer(appConfig.SessionOptions(), loader)

	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, config.DefaultDebounce, func(cfg *config.Config) {
			if err := srv.Configure(ctx, cfg.SessionOptions()); err != nil {
				log.Warnf("Failed to apply reloaded config: %v", err)
			}
		})
		if err != nil {
			log.Warnf("Config hot reload disabled: %v", err)
		} else {
			go watcher.Run(ctx)
			defer watcher.Close()
		}
	}

	showStartupInfo(loader)

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ Keyserve ] Predicts what you meant to type")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(loader *dictionary.Loader) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	println("==========")
	println(" Keyserve ")
	println("==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("data dir: ( %s )", loader.Dir())

	langs, err := loader.Available()
	if err != nil {
		log.Warnf("Scanning dictionaries: %v", err)
	}
	for _, l := range langs {
		log.Info("dictionary", "lang", l.Language, "bytes", l.Size)
	}
	if len(langs) == 0 {
		log.Warn("no dictionaries found; hosts must send them inline")
	}
	log.Info("status: ready")
	println("==========")
}
