package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/tracebackd/internal"
	"github.com/cruciblehq/tracebackd/internal/paths"
)

// Represents the root command for the tracebackd daemon.
type rootCmd struct {
	Quiet   bool       `short:"q" env:"TRACEBACKD_QUIET" help:"Suppress informational output."`
	Verbose bool       `short:"v" env:"TRACEBACKD_VERBOSE" help:"Enable verbose output."`
	Debug   bool       `short:"d" env:"TRACEBACKD_DEBUG" help:"Enable debug output."`
	Socket  string     `short:"s" env:"TRACEBACKD_SOCKET" help:"Override the default Unix socket path." placeholder:"PATH"`
	LogJSON bool       `name:"log-json" env:"TRACEBACKD_LOG_JSON" help:"Write logs as JSON."`
	Start   StartCmd   `cmd:"" help:"Start the daemon."`
	Send    SendCmd    `cmd:"" help:"Send a message to a running daemon."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parsed command line.
var RootCmd rootCmd

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd, options(ctx, paths.ConfigFile())...)

	configureLogger()

	return kongCtx.Run()
}

// Parser options shared by [Execute] and tests. Flag defaults are read from
// the JSON file at config when it exists.
func options(ctx context.Context, config string) []kong.Option {
	return []kong.Option{
		kong.Name(internal.Name),
		kong.Description("The traceback receiver daemon.\n\nListens on a Unix domain socket for tracebacks sent by local processes."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, config),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	}
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	internal.SetDebug(RootCmd.Debug || internal.IsDebug())
	internal.SetQuiet(RootCmd.Quiet || internal.IsQuiet())
	internal.SetVerbose(RootCmd.Verbose || internal.IsVerbose())

	slog.SetDefault(newLogger(RootCmd.LogJSON))
}

// Builds a stderr logger at the level implied by the current modes. Verbose
// output includes source locations.
func newLogger(json bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     internal.LogLevel(),
		AddSource: internal.IsVerbose(),
	}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// Returns the socket path selected on the command line, or the default.
func socketPath() string {
	if RootCmd.Socket != "" {
		return RootCmd.Socket
	}
	return paths.Socket()
}
