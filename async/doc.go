// Package async provides the deferred variant of the lazy sequence engine.
//
// Every pull returns a *Future that settles with one pull.Result. Stages run
// each pull on its own goroutine and await exactly one upstream future per
// upstream pull. A sequence has a single consumer that awaits each pull before
// issuing the next. When an Await gives up because its context ended, the
// pull keeps running; the next Next, Close or Fail waits for it to settle
// first, so abandoning a pull and then closing is safe.
//
//	s := async.Map(async.FromSlice([]int{1, 2, 3}), func(_ context.Context, n int) (int, error) {
//	    return n * 2, nil
//	}).Take(2)
//	out, err := s.ToSlice(ctx).Await(ctx)
package async
