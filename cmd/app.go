//go:build !p256_noder && !p256_noprehash

// Package cmd implements the p256 command-line tool.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/anchorageoss/p256/internal/config"
	"github.com/anchorageoss/p256/internal/logger"
	"github.com/anchorageoss/p256/keys"
	"github.com/anchorageoss/p256/verify"
)

type appContextKey struct{}

// appContext holds what every command needs once global flags are resolved.
type appContext struct {
	settings  *config.Settings
	log       *slog.Logger
	closer    io.Closer
	store     *keys.FileStore
	formatter *verify.Formatter
}

// App builds the root command.
func App() *cli.Command {
	return &cli.Command{
		Name:  "p256",
		Usage: "P-256 key generation, ECDSA signing and ECDH agreement",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to a YAML configuration file",
				Sources: cli.EnvVars("P256_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "key-dir",
				Usage:   "Directory holding key files (default ~/.config/p256/keys)",
				Sources: cli.EnvVars("P256_KEY_DIR"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warning or error",
				Sources: cli.EnvVars("P256_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-type",
				Usage:   "Log destination: console or file",
				Sources: cli.EnvVars("P256_LOG_TYPE"),
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "Log file path when --log-type=file",
				Sources: cli.EnvVars("P256_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Output format: text or json",
			},
		},
		Before: setup,
		After:  teardown,
		Commands: []*cli.Command{
			KeygenCommand(),
			PubkeyCommand(),
			SignCommand(),
			VerifyCommand(),
			AgreeCommand(),
			ConvertSignatureCommand(),
			EnvelopeCommand(),
			ListKeysCommand(),
			BackendCommand(),
		},
	}
}

func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	settings, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, err
	}

	if cmd.IsSet("key-dir") {
		settings.KeyDir = cmd.String("key-dir")
	}
	if cmd.IsSet("log-level") {
		settings.Logger.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-type") {
		settings.Logger.LogType = cmd.String("log-type")
	}
	if cmd.IsSet("log-file") {
		settings.Logger.FilePath = cmd.String("log-file")
	}
	if cmd.IsSet("output") {
		settings.Output.Format = cmd.String("output")
	}
	if err := settings.Validate(); err != nil {
		return ctx, err
	}

	log, closer, err := logger.New(settings.Logger, errWriter(cmd))
	if err != nil {
		return ctx, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := keys.NewFileStore(settings.KeyDir)
	if err != nil {
		_ = closer.Close()
		return ctx, err
	}

	log.Debug("configuration loaded", "keyDir", store.Dir, "output", settings.Output.Format)

	return context.WithValue(ctx, appContextKey{}, &appContext{
		settings:  settings,
		log:       log,
		closer:    closer,
		store:     store,
		formatter: verify.NewFormatter(),
	}), nil
}

func teardown(ctx context.Context, _ *cli.Command) error {
	if app, ok := ctx.Value(appContextKey{}).(*appContext); ok {
		return app.closer.Close()
	}
	return nil
}

// fromContext returns the resolved settings, or defaults when a command runs
// without the root's Before hook.
func fromContext(ctx context.Context) *appContext {
	if app, ok := ctx.Value(appContextKey{}).(*appContext); ok {
		return app
	}
	settings := config.Default()
	store, err := keys.NewFileStore("")
	if err != nil {
		store = &keys.FileStore{Dir: "."}
	}
	return &appContext{
		settings:  settings,
		log:       slog.New(slog.DiscardHandler),
		closer:    io.NopCloser(nil),
		store:     store,
		formatter: verify.NewFormatter(),
	}
}

func (a *appContext) jsonOutput() bool {
	return a.settings.Output.Format == config.FormatJSON
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
