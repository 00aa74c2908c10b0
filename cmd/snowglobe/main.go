package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"snowglobe/internal/card"
	"snowglobe/internal/config"
	"snowglobe/internal/greeting"
	"snowglobe/internal/input"
	"snowglobe/internal/server"
)

type options struct {
	configPath string
	debug      bool
	logger     *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "snowglobe",
		Short:         "Snowy greeting card scene with shake-to-reveal snowfall",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.debug)
			if err != nil {
				return fmt.Errorf("initialise logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "snowglobe.yml", "configuration file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newServeCmd(opts), newRenderCmd(opts))
	return root
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the frame loop and the HTTP interface until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger.Sugar()
			cfg, err := loadConfig(opts.configPath, logger)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			c, err := card.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("build card: %w", err)
			}
			s, err := server.New(cfg, c, logger)
			if err != nil {
				return fmt.Errorf("initialise server: %w", err)
			}
			if err := s.Run(ctx); err != nil {
				return fmt.Errorf("server exited: %w", err)
			}
			return nil
		},
	}
}

type renderOptions struct {
	out    string
	frames int
	shake  bool
	name   string
	locale string
	key    string
}

func newRenderCmd(opts *options) *cobra.Command {
	ropts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Build the scene, advance it and write a PNG preview",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger.Sugar()
			cfg, err := loadConfig(opts.configPath, logger)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return runRender(ctx, cfg, ropts, logger)
		},
	}
	cmd.Flags().StringVarP(&ropts.out, "out", "o", "snowglobe.png", "output PNG path")
	cmd.Flags().IntVar(&ropts.frames, "frames", 120, "frames to simulate before rendering")
	cmd.Flags().BoolVar(&ropts.shake, "shake", false, "shake the card before simulating")
	cmd.Flags().StringVar(&ropts.name, "name", "", "recipient name")
	cmd.Flags().StringVar(&ropts.locale, "locale", "", "greeting locale (c, e or v)")
	cmd.Flags().StringVar(&ropts.key, "key", "", "shared card key")
	return cmd
}

func runRender(ctx context.Context, cfg *config.Config, ropts *renderOptions, logger *zap.SugaredLogger) error {
	if ropts.frames < 0 {
		return fmt.Errorf("frames cannot be negative")
	}
	c, err := card.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("build card: %w", err)
	}
	defer c.Close()

	if ropts.name != "" || ropts.locale != "" || ropts.key != "" {
		q := url.Values{}
		q.Set("n", ropts.name)
		if ropts.locale != "" {
			q.Set("l", ropts.locale)
		}
		if ropts.key != "" {
			q.Set("k", ropts.key)
		}
		c.Relabel(greeting.ParseParams(q))
	}

	if ropts.shake {
		burst := c.Trigger(input.SourceClick, 0)
		if err := burst.Wait(ctx); err != nil {
			return fmt.Errorf("wait for shake: %w", err)
		}
	}

	start := time.Now()
	for i := 0; i < ropts.frames; i++ {
		if _, err := c.Frame(ctx); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	logger.Debugw("frames simulated", "frames", ropts.frames, "elapsed", time.Since(start))

	if err := c.SavePreview(ropts.out); err != nil {
		return err
	}
	logger.Infow("preview written", "path", ropts.out)
	return nil
}

// loadConfig reads path, writing the defaults there first when the file does
// not exist yet.
func loadConfig(path string, logger *zap.SugaredLogger) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err := config.WriteDefault(path); err != nil {
				return nil, fmt.Errorf("write default config: %w", err)
			}
			logger.Infow("no configuration found, default configuration written", "path", path)
			cfg, err = config.Load(path)
		}
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}
	return cfg, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
