package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-softwarelab/common/pkg/types"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/lazyseq/async"
	"github.com/kbukum/lazyseq/logger"
	"github.com/kbukum/lazyseq/observability"
	"github.com/kbukum/lazyseq/pull"
	"github.com/kbukum/lazyseq/seq"
)

// stageNames lists the stages c enables in application order.
func stageNames(c ChainConfig) []string {
	names := []string{"source"}
	names = append(names, lo.Compact([]string{
		lo.Ternary(c.Drop != 0, "drop", ""),
		lo.Ternary(!math.IsInf(c.Take, 1), "take", ""),
		lo.Ternary(c.Grep != "", "grep", ""),
		lo.Ternary(c.Upper, "upper", ""),
		lo.Ternary(c.Words, "words", ""),
		lo.Ternary(c.Number, "number", ""),
	})...)
	return append(names, terminalName(c))
}

func terminalName(c ChainConfig) string {
	switch {
	case c.Count:
		return "count"
	case c.First != "":
		return "first"
	case c.Max > 0:
		return "max"
	default:
		return "print"
	}
}

// execute runs the chain described by c over the lines of in inside one
// observed run. Stage loggers derive from log; run events go to the chain
// component logger.
func execute(ctx context.Context, c ChainConfig, in io.Reader, out io.Writer, log *logger.Logger, ins *observability.Instruments) (err error) {
	run := observability.NewRun(strings.Join(stageNames(c), "|"), lo.Ternary(c.Async, "async", "sync"), ins)
	if c.RunID != "" {
		run.ID = c.RunID
	}
	ctx, span := run.Start(ctx)
	log = log.WithContext(ctx)
	runLog := logger.Get("chain").WithContext(ctx)
	runLog.Debug("run started", logger.Fields("chain", run.Chain, "mode", run.Mode))

	var n int
	defer func() {
		run.End(span, n, err)
		if err != nil {
			runLog.Error("run failed", logger.ErrorFields(run.Chain, err))
			return
		}
		runLog.Debug("run finished", logger.DurationFields(run.Chain, run.Duration()), logger.Fields(logger.FieldCount, n))
	}()

	if c.Async {
		n, err = runAsync(ctx, c, in, out, log, ins)
	} else {
		n, err = runSync(ctx, c, in, out, log, ins)
	}
	return err
}

func contains(sub string) func(string) (bool, error) {
	return func(line string) (bool, error) { return strings.Contains(line, sub), nil }
}

func upper(line string) (string, error) { return strings.ToUpper(line), nil }

func words(line string) (any, error) { return strings.Fields(line), nil }

func numbered(p types.Pair[int, string]) (string, error) {
	return fmt.Sprintf("%6d\t%s", p.Left, p.Right), nil
}

// lineSource yields the lines of r, failing with the scanner's error.
func lineSource(r io.Reader) *seq.Seq[string] {
	sc := bufio.NewScanner(r)
	return seq.FromFunc(func(any) (pull.Result[string], error) {
		if sc.Scan() {
			return pull.Yield(sc.Text()), nil
		}
		return pull.Exhausted[string](nil), sc.Err()
	})
}

func runSync(ctx context.Context, c ChainConfig, in io.Reader, out io.Writer, log *logger.Logger, ins *observability.Instruments) (int, error) {
	debug := log.Enabled(zerolog.DebugLevel)
	wrap := func(stage string, s *seq.Seq[string]) *seq.Seq[string] {
		s = observability.Observe[string](ctx, s, stage, ins)
		if debug {
			s = observability.WithLogging[string](s, stage, log)
		}
		return s
	}

	s := wrap("source", lineSource(in))
	if c.Drop != 0 {
		s = wrap("drop", s.Drop(c.Drop))
	}
	if !math.IsInf(c.Take, 1) {
		s = wrap("take", s.Take(c.Take))
	}
	if c.Grep != "" {
		s = wrap("grep", s.Filter(contains(c.Grep)))
	}
	if c.Upper {
		s = wrap("upper", seq.Map(s, upper))
	}
	if c.Words {
		s = wrap("words", seq.FlatMap[string, string](s, words))
	}
	if c.Number {
		s = wrap("number", seq.Map(seq.IndexedPairs[string](s), numbered))
	}

	switch terminalName(c) {
	case "count":
		ones := seq.Map(s, func(string) (int, error) { return 1, nil })
		total, err := ones.Reduce(func(acc, v int) (int, error) { return acc + v, nil }, pull.Seed(0))
		if err != nil {
			return 0, err
		}
		return 1, writeLine(out, total)
	case "first":
		found, err := s.Find(contains(c.First))
		if err != nil || !found.IsPresent() {
			return 0, err
		}
		return 1, writeLine(out, found.MustGet())
	case "max":
		lines, err := s.ToSliceMax(c.Max)
		if err != nil {
			return 0, err
		}
		return len(lines), printAll(out, lines)
	default:
		n := 0
		err := s.ForEach(func(line string) error {
			n++
			return writeLine(out, line)
		})
		return n, err
	}
}

// runAsync feeds the lines of in through a channel from a producer
// goroutine and consumes them with the async engine. The producer stops
// once the consumer is done.
func runAsync(ctx context.Context, c ChainConfig, in io.Reader, out io.Writer, log *logger.Logger, ins *observability.Instruments) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	lines := make(chan string)
	g.Go(func() error {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-gctx.Done():
				return nil
			}
		}
		return sc.Err()
	})

	var n int
	g.Go(func() error {
		defer cancel()
		var err error
		n, err = consumeAsync(gctx, c, async.FromChan[string](lines), out, log, ins)
		return err
	})
	return n, g.Wait()
}

func consumeAsync(ctx context.Context, c ChainConfig, src *async.Seq[string], out io.Writer, log *logger.Logger, ins *observability.Instruments) (int, error) {
	debug := log.Enabled(zerolog.DebugLevel)
	wrap := func(stage string, s *async.Seq[string]) *async.Seq[string] {
		s = observability.ObserveAsync[string](s, stage, ins)
		if debug {
			s = observability.WithLoggingAsync[string](s, stage, log)
		}
		return s
	}
	withCtx := func(fn func(string) (bool, error)) func(context.Context, string) (bool, error) {
		return func(_ context.Context, line string) (bool, error) { return fn(line) }
	}

	s := wrap("source", src)
	if c.Drop != 0 {
		s = wrap("drop", s.Drop(c.Drop))
	}
	if !math.IsInf(c.Take, 1) {
		s = wrap("take", s.Take(c.Take))
	}
	if c.Grep != "" {
		s = wrap("grep", s.Filter(withCtx(contains(c.Grep))))
	}
	if c.Upper {
		s = wrap("upper", async.Map(s, func(_ context.Context, line string) (string, error) { return upper(line) }))
	}
	if c.Words {
		s = wrap("words", async.FlatMap[string, string](s, func(_ context.Context, line string) (any, error) { return words(line) }))
	}
	if c.Number {
		s = wrap("number", async.Map(async.IndexedPairs[string](s), func(_ context.Context, p types.Pair[int, string]) (string, error) { return numbered(p) }))
	}

	switch terminalName(c) {
	case "count":
		ones := async.Map(s, func(context.Context, string) (int, error) { return 1, nil })
		total, err := ones.Reduce(ctx, func(_ context.Context, acc, v int) (int, error) { return acc + v, nil }, pull.Seed(0)).Await(ctx)
		if err != nil {
			return 0, err
		}
		return 1, writeLine(out, total)
	case "first":
		found, err := s.Find(ctx, withCtx(contains(c.First))).Await(ctx)
		if err != nil || !found.IsPresent() {
			return 0, err
		}
		return 1, writeLine(out, found.MustGet())
	case "max":
		lines, err := s.ToSliceMax(ctx, c.Max).Await(ctx)
		if err != nil {
			return 0, err
		}
		return len(lines), printAll(out, lines)
	default:
		n := 0
		_, err := s.ForEach(ctx, func(_ context.Context, line string) error {
			n++
			return writeLine(out, line)
		}).Await(ctx)
		return n, err
	}
}

func writeLine(out io.Writer, v any) error {
	_, err := fmt.Fprintln(out, v)
	return err
}

func printAll(out io.Writer, lines []string) error {
	for _, line := range lines {
		if err := writeLine(out, line); err != nil {
			return err
		}
	}
	return nil
}
