// Command lexdesk runs the LexDesk AI facade: an HTTP API for the editor,
// a stand-in backend for offline development, status tools and an MCP
// server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lexdesk/lexdesk/internal/api"
	"github.com/lexdesk/lexdesk/internal/config"
	apperrors "github.com/lexdesk/lexdesk/internal/errors"
	"github.com/lexdesk/lexdesk/internal/facade"
	"github.com/lexdesk/lexdesk/internal/log"
	"github.com/lexdesk/lexdesk/internal/mcptools"
	"github.com/lexdesk/lexdesk/internal/operation"
	"github.com/lexdesk/lexdesk/internal/tui"
)

var version = "dev"

const usage = `Usage: lexdesk [flags] <command> [args]

Commands:
  init                  Write a default config file to the -config path
  serve                 Run the HTTP API with remote fallback
  mock-backend          Run a stand-in backend answering from the local generator
  status                Probe the remote service once and print the status
  watch                 Live status view
  run <operation> TEXT  Run one operation (generateText, analyzeDocument,
                        summarizeText, analyzeContract); TEXT "-" reads stdin
  mcp                   Serve the operations as MCP tools on stdio

Flags:
`

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Path to the TOML config file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	command := args[0]

	if command == "init" {
		if err := initConfig(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, apperrors.FormatUserMessage(err))
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, apperrors.FormatUserMessage(err))
		os.Exit(1)
	}

	// The MCP transport owns stdout, so logs always go to stderr as JSON there.
	log.Configure(os.Stderr, cfg.Log.Level, cfg.Log.Console && command != "mcp")
	if *debug {
		log.SetDebugMode()
		log.Debug().Msg("Debug mode enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "serve":
		err = serve(ctx, cfg, false)
	case "mock-backend":
		err = serve(ctx, cfg, true)
	case "status":
		err = printStatus(ctx, cfg)
	case "watch":
		err = watch(ctx, cfg)
	case "run":
		err = runOperation(ctx, cfg, args[1:])
	case "mcp":
		err = serveMCP(ctx, cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, apperrors.FormatUserMessage(err))
		os.Exit(1)
	}
}

// initConfig writes the defaults to path. An existing file is kept.
func initConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return apperrors.NewBuilder(apperrors.CodeConfigInvalid, "config file already exists: "+path).
			Kind(apperrors.KindInvalidInput).
			WithSuggestion("Edit the file or remove it first").
			Build()
	}
	if err := config.Default().Save(path); err != nil {
		return apperrors.Wrap(err, apperrors.CodeConfigInvalid, "failed to write config", apperrors.KindInternal)
	}
	fmt.Println("Wrote", path)
	return nil
}

// newService builds the facade. Offline services never touch the network.
func newService(cfg *config.Config, offline bool) (*facade.Service, error) {
	if !offline {
		return facade.NewFromConfig(cfg)
	}
	local := *cfg
	local.Remote.BaseURL = ""
	return facade.NewFromConfig(&local)
}

func serve(ctx context.Context, cfg *config.Config, mock bool) error {
	svc, err := newService(cfg, mock)
	if err != nil {
		return err
	}
	defer svc.Close()

	log.Info().
		Str("remote", cfg.Remote.BaseURL).
		Str("provider", svc.RemoteName()).
		Dur("probe_interval", cfg.Probe.Interval.D()).
		Dur("cache_interval", cfg.Probe.CacheInterval.D()).
		Int("max_errors", cfg.Dispatch.MaxErrors).
		Bool("mock", mock).
		Msg("Configured AI facade")

	svc.Start(ctx)

	server := api.NewServer(api.Config{
		Addr:            cfg.Server.Addr,
		RateLimit:       cfg.Server.RateLimit,
		Burst:           cfg.Server.Burst,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.D(),
		Mock:            mock,
	}, svc)
	return server.Start(ctx)
}

func printStatus(ctx context.Context, cfg *config.Config) error {
	svc, err := newService(cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	svc.ForceCheck(ctx)
	fmt.Println(tui.RenderReport(svc.Status(), time.Now()))
	return nil
}

func watch(ctx context.Context, cfg *config.Config) error {
	// Keep the terminal clean while the view owns it.
	log.Configure(io.Discard, cfg.Log.Level, false)

	svc, err := newService(cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	svc.Start(ctx)
	return tui.RunWatch(svc)
}

func runOperation(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return apperrors.InvalidInput("run needs an operation and a text, e.g. lexdesk run summarizeText \"...\"")
	}
	kind := operation.Kind(args[0])
	if !kind.Valid() {
		return apperrors.NewBuilder(apperrors.CodeInvalidInput, "unknown operation "+args[0]).
			Kind(apperrors.KindInvalidInput).
			WithSuggestion("Use one of generateText, analyzeDocument, summarizeText, analyzeContract").
			Build()
	}

	text := strings.Join(args[1:], " ")
	if text == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		text = string(b)
	}

	svc, err := newService(cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	out, err := svc.Run(ctx, kind, text, nil)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, tui.Badge(svc.Status().Status.Mode))
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(operation.ToWire(out.Result))
}

func serveMCP(ctx context.Context, cfg *config.Config) error {
	svc, err := newService(cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	svc.Start(ctx)
	return mcptools.Serve(ctx, svc, version)
}
