package async

import (
	"context"
	stderrors "errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-softwarelab/common/pkg/types"

	"github.com/kbukum/lazyseq/errors"
	"github.com/kbukum/lazyseq/pull"
	"github.com/kbukum/lazyseq/seq"
)

func double(_ context.Context, n int) (int, error) { return n * 2, nil }

func isEven(_ context.Context, n int) (bool, error) { return n%2 == 0, nil }

func TestMap(t *testing.T) {
	src := newRecorder(1, 2, 3)
	src.final = "end"
	got, final := drain(t, Map(src, double))
	if !slices.Equal(got, []int{2, 4, 6}) {
		t.Errorf("got %v, want [2 4 6]", got)
	}
	if final != "end" {
		t.Errorf("final %v, want end", final)
	}
}

func TestMap_IsLazy(t *testing.T) {
	src := newRecorder(1, 2, 3)
	m := Map(src, double)
	if src.pulls != 0 {
		t.Fatalf("building a stage pulled %d times", src.pulls)
	}
	ctx := context.Background()
	if _, err := m.Next(ctx, "x").Await(ctx); err != nil {
		t.Fatal(err)
	}
	if src.pulls != 1 || src.injected[0] != "x" {
		t.Errorf("pulls %d injected %v, want one pull with x", src.pulls, src.injected)
	}
}

func TestMap_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	var seen any
	_, err := Map(Of(1), func(ctx context.Context, n int) (int, error) {
		seen = ctx.Value(key{})
		return n, nil
	}).ToSlice(ctx).Await(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if seen != "v" {
		t.Errorf("callback saw %v, want the caller's context", seen)
	}
}

func TestMap_CallbackError(t *testing.T) {
	boom := stderrors.New("boom")
	ctx := context.Background()
	m := Map(Of(1, 2), func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	got, err := m.ToSlice(ctx).Await(ctx)
	if err != boom {
		t.Fatalf("got %v, want boom", err)
	}
	if !slices.Equal(got, []int{1}) {
		t.Errorf("got %v, want [1]", got)
	}
	r, err := m.Next(ctx, nil).Await(ctx)
	if err != nil || !r.Done {
		t.Errorf("a failed stage should stay exhausted, got %v %v", r, err)
	}
}

func TestMap_NilCallback(t *testing.T) {
	src := newRecorder(1)
	m := Map[int, int](src, nil)
	if src.pulls != 0 {
		t.Fatal("nil callback must not pull")
	}
	ctx := context.Background()
	if _, err := m.Next(ctx, nil).Await(ctx); !errors.IsType(err) {
		t.Errorf("expected type error, got %v", err)
	}
}

func TestFilter(t *testing.T) {
	src := newRecorder(1, 3, 4, 5, 6)
	f := FromIterator[int](src).Filter(isEven)
	ctx := context.Background()
	r, err := f.Next(ctx, "q").Await(ctx)
	if err != nil || r.Value != 4 {
		t.Fatalf("got %v %v, want 4", r, err)
	}
	if !slices.Equal(src.injected, []any{"q", "q", "q"}) {
		t.Errorf("injected %v", src.injected)
	}
	got, _ := drain(t, f)
	if !slices.Equal(got, []int{6}) {
		t.Errorf("got %v, want [6]", got)
	}
}

func TestTake(t *testing.T) {
	src := newRecorder(1, 2, 3, 4, 5)
	got, final := drain(t, FromIterator[int](src).Take(2))
	if !slices.Equal(got, []int{1, 2}) || final != nil {
		t.Errorf("got %v final %v", got, final)
	}
	if src.pulls != 2 || src.closes != 1 {
		t.Errorf("pulls %d closes %d, want 2 and 1", src.pulls, src.closes)
	}
}

func TestTake_Zero(t *testing.T) {
	src := newRecorder(1)
	got, _ := drain(t, FromIterator[int](src).Take(0))
	if len(got) != 0 || src.pulls != 0 || src.closes != 1 {
		t.Errorf("got %v pulls %d closes %d", got, src.pulls, src.closes)
	}
}

func TestTakeDrop_NegativeLimit(t *testing.T) {
	ctx := context.Background()
	for _, s := range []*Seq[int]{Of(1).Take(-1), Of(1).Drop(-2.5)} {
		if _, err := s.Next(ctx, nil).Await(ctx); !errors.IsRange(err) {
			t.Errorf("expected range error, got %v", err)
		}
	}
}

func TestDrop(t *testing.T) {
	src := newRecorder(1, 2, 3, 4)
	d := FromIterator[int](src).Drop(2.9)
	ctx := context.Background()
	r, err := d.Next(ctx, "x").Await(ctx)
	if err != nil || r.Value != 3 {
		t.Fatalf("got %v %v, want 3", r, err)
	}
	if !slices.Equal(src.injected, []any{nil, nil, "x"}) {
		t.Errorf("injected %v, discard pulls should inject nil", src.injected)
	}
}

func TestIndexedPairs(t *testing.T) {
	got, _ := drain(t, IndexedPairs[string](Lift(seq.FromString("Hey"))))
	want := []types.Pair[int, string]{{Left: 0, Right: "H"}, {Left: 1, Right: "e"}, {Left: 2, Right: "y"}}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFlatMap_InnerForms(t *testing.T) {
	ch := make(chan int, 2)
	ch <- 30
	ch <- 31
	close(ch)

	fm := FlatMap[int, int](Of(1, 2, 3, 4, 5), func(_ context.Context, n int) (any, error) {
		switch n {
		case 1:
			return Of(10, 11), nil
		case 2:
			return seq.Of(20), nil
		case 3:
			return ch, nil
		case 4:
			return []int{40, 41}, nil
		}
		return n * 10, nil
	})
	got, _ := drain(t, fm)
	want := []int{10, 11, 20, 30, 31, 40, 41, 50}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFlatMap_UnexpectedResult(t *testing.T) {
	ctx := context.Background()
	fm := FlatMap[int, int](Of(1), func(context.Context, int) (any, error) { return "x", nil })
	if _, err := fm.Next(ctx, nil).Await(ctx); !errors.IsType(err) {
		t.Errorf("expected type error, got %v", err)
	}
}

func TestFlatMap_CloseClosesInnerAndUpstream(t *testing.T) {
	outer := newRecorder(1, 2)
	inner := newRecorder(7, 8)
	fm := FlatMap[int, int](outer, func(context.Context, int) (any, error) { return inner, nil })
	ctx := context.Background()
	got, err := fm.ToSliceMax(ctx, 1).Await(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{7}) {
		t.Errorf("got %v, want [7]", got)
	}
	if inner.closes != 1 || outer.closes != 1 {
		t.Errorf("inner closes %d outer closes %d, want 1 and 1", inner.closes, outer.closes)
	}
}

func TestStage_FailClosesUpstream(t *testing.T) {
	src := newRecorder(1, 2)
	m := Map(src, double)
	boom := stderrors.New("boom")
	ctx := context.Background()
	if _, err := m.Fail(ctx, boom).Await(ctx); err != boom {
		t.Fatalf("got %v, want boom", err)
	}
	if src.closes != 1 {
		t.Errorf("closed %d times, want 1", src.closes)
	}
	r, err := m.Next(ctx, nil).Await(ctx)
	if err != nil || !r.Done {
		t.Errorf("got %v %v, want exhausted", r, err)
	}
}

func TestLift_ForwardsFail(t *testing.T) {
	boom := stderrors.New("boom")
	var got error
	src := Lift[int](failer{fail: func(err error) { got = err }})
	ctx := context.Background()
	r, err := src.Fail(ctx, boom).Await(ctx)
	if err != nil || !r.Done {
		t.Fatalf("got %v %v", r, err)
	}
	if got != boom {
		t.Errorf("failer received %v, want boom", got)
	}
}

type failer struct {
	fail func(error)
}

func (failer) Next(any) (pull.Result[int], error) { return pull.Exhausted[int](nil), nil }

func (f failer) Fail(err error) (pull.Result[int], error) {
	f.fail(err)
	return pull.Exhausted[int]("handled"), nil
}

func TestTakeDrop_Partition(t *testing.T) {
	ctx := context.Background()
	items := []int{5, 6, 7, 8, 9}
	for k := 0; k <= len(items); k++ {
		head, err := FromSlice(items).Take(float64(k)).ToSlice(ctx).Await(ctx)
		if err != nil {
			t.Fatal(err)
		}
		tail, err := FromSlice(items).Drop(float64(k)).ToSlice(ctx).Await(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got := append(head, tail...); !slices.Equal(got, items) {
			t.Errorf("k=%d: got %v, want %v", k, got, items)
		}
	}
}

func TestMap_CallbacksFollowPulls(t *testing.T) {
	var first, second int
	chain := Map(Map(FromSlice([]int{1, 2, 3, 4, 5, 6}), func(_ context.Context, n int) (int, error) {
		first++
		return n + 1, nil
	}), func(_ context.Context, n int) (int, error) {
		second++
		return n * 2, nil
	}).Filter(isEven).Take(4)
	ctx := context.Background()
	for range 2 {
		if _, err := chain.Next(ctx, nil).Await(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if first != 2 || second != 2 {
		t.Errorf("callbacks ran %d and %d times after two pulls, want 2 and 2", first, second)
	}
	if err := chain.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if first != 2 || second != 2 {
		t.Errorf("close ran callbacks: %d and %d", first, second)
	}
}

func TestStage_CloseAfterCancelledPull(t *testing.T) {
	var produced atomic.Int32
	src := FromFunc(func(context.Context, any) (pull.Result[int], error) {
		time.Sleep(30 * time.Millisecond)
		return pull.Yield(int(produced.Add(1))), nil
	})
	m := Map(src, double)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if _, err := m.Next(ctx, nil).Await(ctx); !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
	bg := context.Background()
	if err := m.Close(bg); err != nil {
		t.Fatal(err)
	}
	r, err := m.Next(bg, nil).Await(bg)
	if err != nil || !r.Done {
		t.Errorf("got %v %v, want exhausted", r, err)
	}
}

func TestStage_NextWaitsForAbandonedPull(t *testing.T) {
	ch := make(chan int)
	src := FromChan[int](ch).Take(3)
	ctx, cancel := context.WithCancel(context.Background())
	f := src.Next(ctx, nil)
	cancel()
	if _, err := f.Await(ctx); !stderrors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want canceled", err)
	}
	bg := context.Background()
	r, err := src.Next(bg, nil).Await(bg)
	if err != nil || !r.Done {
		t.Errorf("got %v %v, want the cancelled pull to have finished the stage", r, err)
	}
	if err := src.Close(bg); err != nil {
		t.Fatal(err)
	}
}

func TestFlatMap_InnerErrorClosesUpstream(t *testing.T) {
	outer := newRecorder(1, 2)
	boom := stderrors.New("boom")
	fm := FlatMap[int, int](outer, func(context.Context, int) (any, error) {
		return FromFunc(func(context.Context, any) (pull.Result[int], error) { return pull.Result[int]{}, boom }), nil
	})
	ctx := context.Background()
	if _, err := fm.Next(ctx, nil).Await(ctx); err != boom {
		t.Fatalf("got %v, want boom", err)
	}
	if outer.closes != 1 {
		t.Errorf("upstream closed %d times, want 1", outer.closes)
	}
	r, err := fm.Next(ctx, nil).Await(ctx)
	if err != nil || !r.Done {
		t.Errorf("got %v %v, want exhausted", r, err)
	}
}

func TestFlatMap_InterfaceElementFlattensSlices(t *testing.T) {
	ctx := context.Background()
	got, err := FlatMap[int, any](Of(1, 2), func(_ context.Context, n int) (any, error) {
		return []int{n, n * 10}, nil
	}).ToSlice(ctx).Await(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []any{1, 10, 2, 20}) {
		t.Errorf("got %v, want [1 10 2 20]", got)
	}
}
