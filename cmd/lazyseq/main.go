// Command lazyseq runs a lazy sequence chain over the lines of a file or
// stdin.
//
// Usage:
//
//	lazyseq [flags] [file]
//
// Stages are applied in a fixed order: drop, take, grep, upper, words,
// number. Then at most one terminal runs: count, first or max. Without one,
// every value is printed.
//
//	--drop N         skip the first N lines
//	--take N         keep at most N lines
//	--grep SUBSTR    keep lines containing SUBSTR
//	--upper          upper-case every value
//	--words          split values into words
//	--number         prefix values with their index
//	--count          print the number of values
//	--first SUBSTR   print the first value containing SUBSTR
//	--max N          print at most N values
//	--async          run on the async engine with a channel-fed source
//	--run-id UUID    use UUID as the run identifier
//	--config PATH    configuration file
//	--version        print the version and exit
//
// Every chain option can also come from the config file (chain.*) or from
// LAZYSEQ_CHAIN_* environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/kbukum/lazyseq/config"
	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/version"
)

const serviceName = "lazyseq"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "lazyseq: %v\n", err)
		os.Exit(1)
	}
}

// flagKeys maps config keys to the flags that override them.
var flagKeys = map[string]string{
	"chain.drop":    "drop",
	"chain.take":    "take",
	"chain.grep":    "grep",
	"chain.upper":   "upper",
	"chain.words":   "words",
	"chain.number":  "number",
	"chain.count":   "count",
	"chain.first":   "first",
	"chain.max":     "max",
	"chain.async":   "async",
	"chain.run_id":  "run-id",
	"debug":         "debug",
	"logging.level": "log-level",
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(serviceName, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Float64("drop", 0, "skip the first N lines")
	fs.Float64("take", math.Inf(1), "keep at most N lines")
	fs.String("grep", "", "keep lines containing SUBSTR")
	fs.Bool("upper", false, "upper-case every value")
	fs.Bool("words", false, "split values into words")
	fs.Bool("number", false, "prefix values with their index")
	fs.Bool("count", false, "print the number of values")
	fs.String("first", "", "print the first value containing SUBSTR")
	fs.Int("max", 0, "print at most N values (0 for all)")
	fs.Bool("async", false, "run on the async engine")
	fs.String("run-id", "", "run identifier (UUID) for logs and spans")
	fs.Bool("debug", false, "enable debug logging")
	fs.String("log-level", "", "log level (trace, debug, info, warn, error, disabled)")
	fs.String("config", "", "configuration file")
	fs.Bool("version", false, "print the version and exit")
	return fs
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := newFlagSet(stderr)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion, _ := fs.GetBool("version"); showVersion {
		_, err := fmt.Fprintln(stdout, version.Get())
		return err
	}

	opts := []config.LoaderOption{config.WithFlags(fs, flagKeys)}
	if path, _ := fs.GetString("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	cfg, err := config.Load[Config](serviceName, opts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Logging, cfg.Name, stderr)
	logger.Reset()
	logger.RegisterDefaults("chain", "telemetry")

	input := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		input = f
	}

	tel, err := startTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer tel.shutdown()

	return execute(ctx, cfg.Chain, input, stdout, logger.GetGlobalLogger(), tel.instruments)
}
