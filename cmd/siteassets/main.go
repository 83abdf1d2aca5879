package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/sydlexius/siteassets/internal/assets"
	"github.com/sydlexius/siteassets/internal/config"
	"github.com/sydlexius/siteassets/internal/iconset"
	"github.com/sydlexius/siteassets/internal/logging"
	"github.com/sydlexius/siteassets/internal/seo"
	"github.com/sydlexius/siteassets/internal/social"
	"github.com/sydlexius/siteassets/internal/version"
	"github.com/sydlexius/siteassets/internal/watcher"
)

// errUsage is returned after usage has already been printed.
var errUsage = errors.New("invalid usage")

// allOrder is the sequence the all and watch commands run generators in.
// seo precedes social so rendered cards are never replaced by placeholders.
var allOrder = []string{"favicons", "missing-icons", "seo", "social"}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("siteassets", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configFlag := flags.String("config", "", "config file (default $SA_CONFIG_PATH or "+config.DefaultPath+")")
	flags.Usage = func() { usage(flags, stderr) }

	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return errUsage
	}

	command := flags.Arg(0)
	switch {
	case command == "version":
		fmt.Fprintf(stdout, "siteassets %s\n", version.String())
		return nil
	case command == "all", command == "watch", slices.Contains(allOrder, command):
	default:
		flags.Usage()
		return fmt.Errorf("unknown command %q", command)
	}

	cfgPath := config.ResolvePath(*configFlag)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logManager, logger := logging.NewManager(loggingConfig(cfg), stdout)
	defer logManager.Close() //nolint:errcheck
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command {
	case "watch":
		return watch(ctx, cfgPath, cfg, logManager, logger)
	case "all":
		return runAll(cfg, logger)
	default:
		return runGenerator(command, cfg, logging.ForRun(logger, command))
	}
}

func usage(flags *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "usage: siteassets [-config path] <command>\n\ncommands:\n")
	fmt.Fprintf(w, "  favicons       write the favicon set into the icons directory\n")
	fmt.Fprintf(w, "  missing-icons  copy placeholder icons for sizes nothing draws\n")
	fmt.Fprintf(w, "  social         render Open Graph, Twitter card and logo images\n")
	fmt.Fprintf(w, "  seo            write SEO placeholders, social.html and the brand mark\n")
	fmt.Fprintf(w, "  all            run every generator\n")
	fmt.Fprintf(w, "  watch          run every generator, then again whenever inputs change\n")
	fmt.Fprintf(w, "  version        print build information\n\nflags:\n")
	flags.PrintDefaults()
}

func loggingConfig(cfg *config.Config) logging.Config {
	return logging.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		FilePath:       cfg.Logging.FilePath,
		FileMaxSizeMB:  cfg.Logging.FileMaxSizeMB,
		FileMaxFiles:   cfg.Logging.FileMaxFiles,
		FileMaxAgeDays: cfg.Logging.FileMaxAgeDays,
	}
}

// summary counts outcomes across generators.
type summary struct {
	Created, Unchanged, Skipped, Failed int
}

func (s *summary) add(o summary) {
	s.Created += o.Created
	s.Unchanged += o.Unchanged
	s.Skipped += o.Skipped
	s.Failed += o.Failed
}

func (s summary) log(logger *slog.Logger) {
	logger.Info("complete",
		slog.Int("created", s.Created),
		slog.Int("unchanged", s.Unchanged),
		slog.Int("skipped", s.Skipped),
		slog.Int("failed", s.Failed))
}

// runAll runs every generator in order. Per-asset failures are logged and
// counted, never returned.
func runAll(cfg *config.Config, logger *slog.Logger) error {
	runLogger := logging.ForRun(logger, "all")
	var total summary
	for _, name := range allOrder {
		s, err := generate(name, cfg, runLogger, true)
		if err != nil {
			return err
		}
		total.add(s)
	}
	total.log(runLogger)
	return nil
}

func runGenerator(name string, cfg *config.Config, logger *slog.Logger) error {
	s, err := generate(name, cfg, logger, false)
	if err != nil {
		return err
	}
	s.log(logger)
	return nil
}

// generate runs one generator. Only setup errors are returned. withCards
// means social runs in the same pass, so seo leaves its images alone.
func generate(name string, cfg *config.Config, logger *slog.Logger, withCards bool) (summary, error) {
	switch name {
	case "favicons":
		res := assets.NewEmitter(assets.Resources(), logger).Emit(cfg.Output.IconsDir, assets.FaviconSet())
		return summary{Created: len(res.Created), Unchanged: len(res.Unchanged), Failed: len(res.Failed)}, nil

	case "missing-icons":
		res := iconset.Copy(cfg.Output.IconsDir, manifest(cfg), logger)
		return summary{Created: len(res.Created), Skipped: len(res.Skipped), Failed: len(res.Failed)}, nil

	case "social":
		gen, err := social.NewGenerator(cfg.Brand, cfg.Fonts, logger)
		if err != nil {
			return summary{}, fmt.Errorf("preparing social images: %w", err)
		}
		res := gen.Generate(cfg.Output.ImagesDir, cfg.Cards)
		return summary{Created: len(res.Created), Unchanged: len(res.Unchanged), Failed: len(res.Failed)}, nil

	case "seo":
		opts := seo.Options{
			ImagesDir: cfg.Output.ImagesDir,
			IconsDir:  cfg.Output.IconsDir,
			Brand:     cfg.Brand,
			Fonts:     cfg.Fonts,
		}
		if withCards {
			opts.Exclude = cardFiles(cfg)
		}
		res, err := seo.Generate(opts, logger)
		if err != nil {
			logger.Error("seo generation failed", slog.String("error", err.Error()))
			return summary{Failed: 1}, nil
		}
		return summary{
			Created:   len(res.Images.Created) + len(res.Created),
			Unchanged: len(res.Images.Unchanged) + len(res.Unchanged),
			Skipped:   len(res.Skipped),
			Failed:    len(res.Images.Failed) + len(res.Failed),
		}, nil
	}
	return summary{}, fmt.Errorf("unknown command %q", name)
}

func manifest(cfg *config.Config) iconset.Manifest {
	m := make(iconset.Manifest, 0, len(cfg.MissingIcons))
	for _, p := range cfg.MissingIcons {
		m = append(m, iconset.Pair{Target: p.Target, Source: p.Source})
	}
	return m
}

// cardFiles lists the images the social generator renders.
func cardFiles(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Cards))
	for _, c := range cfg.Cards {
		names = append(names, c.Name+".png")
	}
	return names
}

// watch runs every generator once, then again after each debounced change
// to the config file or the icons directory. A config change is reloaded
// and applied to logging and watch timing; an invalid config keeps the
// previous one.
func watch(ctx context.Context, cfgPath string, cfg *config.Config, logManager *logging.Manager, logger *slog.Logger) error {
	if err := runAll(cfg, logger); err != nil {
		return err
	}

	current := cfg
	var svc *watcher.Service
	rebuild := func(_ context.Context, changed []string) error {
		if slices.Contains(changed, filepath.Clean(cfgPath)) {
			next, err := config.Load(cfgPath)
			if err != nil {
				logger.Error("config reload failed, keeping previous config", slog.String("error", err.Error()))
			} else {
				current = next
				logManager.Reconfigure(loggingConfig(current))
				svc.SetDebounce(current.Watch.Debounce)
				svc.SetMinInterval(current.Watch.MinInterval)
				logger.Info("config reloaded", slog.String("path", cfgPath), slog.String("logging", logManager.Config().String()))
			}
		}
		return runAll(current, logger)
	}

	svc = watcher.NewService(rebuild, logger, cfg.Watch.Debounce, cfg.Watch.MinInterval)
	svc.WatchFile(cfgPath)
	svc.WatchDir(cfg.Output.IconsDir)

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("watching: %w", err)
	}
	return nil
}
