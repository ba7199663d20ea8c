package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/angelmondragon/pharmacy-backoffice/pkg/config"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/logger"
	"github.com/angelmondragon/pharmacy-backoffice/pkg/metrics"
)

const serviceName = "pharmacyctl"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `uso: pharmacyctl [opções] <comando> [argumentos]

Comandos:
  login --email <email> [--password <senha>]
  signup --name <nome> --email <email> [--password <senha>]
  logout
  whoami
  storefront [--plain]
  list <recurso>
  delete <recurso> <id>
  upload <ficheiro>
  stats

Opções:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.SetInterspersed(false)
	envFile := flags.String("env-file", ".env", "dotenv file loaded before the environment")
	showMetrics := flags.Bool("metrics", false, "print request and cart counters on exit")
	demo := flags.Bool("demo", false, "run against an in-memory pharmacy API seeded with sample data")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return exitUsage
	}

	logg := logger.New(logger.Options{ServiceName: serviceName, Output: stderr})

	if err := godotenv.Load(*envFile); err != nil {
		if flags.Changed("env-file") {
			logg.Warn(ctx, fmt.Sprintf("%s could not be loaded, relying on environment", *envFile))
		} else {
			logg.Debug(ctx, ".env file not found, relying on environment")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		return exitError
	}

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      stderr,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})

	a, err := bootstrap(ctx, cfg, logg, streams{in: stdin, out: stdout, err: stderr}, *demo)
	if err != nil {
		logg.Error(ctx, "failed to start", err)
		return exitError
	}
	defer a.close(ctx)

	name, cmdArgs := flags.Arg(0), flags.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "comando desconhecido: %s\n", name)
		flags.Usage()
		return exitUsage
	}

	code := exitOK
	if err := cmd(ctx, a, cmdArgs); err != nil {
		if errors.Is(err, errUsage) {
			code = exitUsage
		} else {
			logg.Debug(ctx, fmt.Sprintf("%s failed: %v", name, err))
			code = exitError
		}
	}

	if *showMetrics {
		if err := metrics.WriteSnapshot(stderr, a.registry); err != nil {
			logg.Error(ctx, "write metrics snapshot", err)
		}
	}
	return code
}
