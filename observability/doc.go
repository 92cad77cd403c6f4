// Package observability wires OpenTelemetry and structured logging into
// sequence chains.
//
// Stage metrics:
//
//	ins, err := observability.NewInstruments(observability.Meter("lazyseq"))
//	s := observability.Observe(ctx, seq.FromSlice(lines), "source", ins).Take(10)
//
// Pull logging:
//
//	s := observability.WithLogging(src, "source", logger.Get("engine"))
//
// Runs:
//
//	run := observability.NewRun("drop|take", "sync", ins)
//	ctx, span := run.Start(ctx)
//	defer func() { run.End(span, n, err) }()
//
// Exporters:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
package observability
