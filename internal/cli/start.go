package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/awnumar/memguard"
	"github.com/cruciblehq/tracebackd/internal/frame"
	"github.com/cruciblehq/tracebackd/internal/server"
	"github.com/cruciblehq/tracebackd/internal/sink"
	"golang.org/x/sync/errgroup"
)

// Represents the 'tracebackd start' command.
type StartCmd struct {
	Backlog     int           `env:"TRACEBACKD_BACKLOG" default:"5" help:"Pending connections queued before new ones are refused."`
	MaxLen      uint64        `name:"max-len" env:"TRACEBACKD_MAX_LEN" default:"16384" help:"Largest accepted message in bytes."`
	MinLen      uint64        `name:"min-len" env:"TRACEBACKD_MIN_LEN" default:"3" help:"Smallest accepted message in bytes (strict framing only)."`
	Lenient     bool          `env:"TRACEBACKD_LENIENT" help:"Accept messages without a NUL terminator."`
	ReadTimeout time.Duration `name:"read-timeout" env:"TRACEBACKD_READ_TIMEOUT" default:"0s" help:"Drop senders that stall longer than this. Zero waits forever."`
	Output      string        `short:"o" env:"TRACEBACKD_OUTPUT" type:"path" placeholder:"FILE" help:"Append records to FILE instead of standard output."`
	LogSink     bool          `name:"log-sink" env:"TRACEBACKD_LOG_SINK" help:"Also record received messages in the daemon log."`
	PIDFile     string        `name:"pid-file" env:"TRACEBACKD_PID_FILE" type:"path" placeholder:"FILE" help:"Override the default PID file path."`
}

// Executes the start command.
//
// Serves the Unix socket until the context is cancelled (e.g. via SIGINT or
// SIGTERM) or accepting a connection fails.
func (c *StartCmd) Run(ctx context.Context) error {
	defer memguard.Purge()

	out, release, err := c.buildSink()
	if err != nil {
		return err
	}
	defer release()

	srv, err := server.New(server.Config{
		SocketPath: RootCmd.Socket,
		PIDFile:    c.PIDFile,
		Backlog:    c.Backlog,
		Frame:      c.frameConfig(),
		Sink:       out,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}

	slog.Info("tracebackd is running")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Serve)

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		return srv.Stop()
	})

	return g.Wait()
}

func (c *StartCmd) frameConfig() frame.Config {
	return frame.Config{
		MaxLen:      c.MaxLen,
		MinLen:      c.MinLen,
		Lenient:     c.Lenient,
		ReadTimeout: c.ReadTimeout,
	}
}

// Builds the output sink from the flags. The returned function releases it.
func (c *StartCmd) buildSink() (sink.Sink, func(), error) {
	var (
		out     *sink.Writer
		release = func() {}
	)

	if c.Output == "" {
		out = sink.NewWriter(os.Stdout)
	} else {
		f, err := sink.OpenFile(c.Output)
		if err != nil {
			return nil, nil, err
		}
		out = f
		release = func() { f.Close() }
	}

	if c.LogSink {
		return sink.Multi(out, sink.NewLog(slog.Default())), release, nil
	}
	return out, release, nil
}
