package seq

import (
	"maps"
	"slices"
	"testing"

	"github.com/kbukum/lazyseq/errors"
)

func TestFrom_AcceptedSources(t *testing.T) {
	sources := map[string]any{
		"slice":    []int{1, 2, 3},
		"iter.Seq": slices.Values([]int{1, 2, 3}),
		"func":     func(yield func(int) bool) { _ = yield(1) && yield(2) && yield(3) },
		"iterator": Of(1, 2, 3),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			s, err := From[int](src)
			if err != nil {
				t.Fatal(err)
			}
			got, err := s.ToSlice()
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(got, []int{1, 2, 3}) {
				t.Errorf("got %v", got)
			}
		})
	}
}

func TestFrom_Strings(t *testing.T) {
	chars, err := From[string]("héllo")
	if err != nil {
		t.Fatal(err)
	}
	got, _ := chars.ToSlice()
	if !slices.Equal(got, []string{"h", "é", "l", "l", "o"}) {
		t.Errorf("got %q", got)
	}

	runes, err := From[rune]("hé")
	if err != nil {
		t.Fatal(err)
	}
	gotRunes, _ := runes.ToSlice()
	if !slices.Equal(gotRunes, []rune{'h', 'é'}) {
		t.Errorf("got %q", gotRunes)
	}
}

func TestFrom_NotIterable(t *testing.T) {
	for _, src := range []any{42, nil, []string{"a"}, "text"} {
		if _, err := From[int](src); !errors.IsType(err) {
			t.Errorf("From(%v): expected type error, got %v", src, err)
		}
	}
}

func TestFromSeq_CloseStopsProducer(t *testing.T) {
	produced := 0
	stopped := false
	s := FromSeq(func(yield func(int) bool) {
		defer func() { stopped = true }()
		for i := 0; ; i++ {
			produced++
			if !yield(i) {
				return
			}
		}
	})
	got, err := s.Take(3).ToSlice()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{0, 1, 2}) {
		t.Errorf("got %v", got)
	}
	if !stopped {
		t.Error("closing the sequence should stop the producer")
	}
	if produced != 3 {
		t.Errorf("producer ran %d steps, want 3", produced)
	}
}

func TestFromSeq_DrainRunsProducerCleanup(t *testing.T) {
	var cleaned bool
	s := FromSeq(func(yield func(int) bool) {
		defer func() { cleaned = true }()
		for i := range 2 {
			if !yield(i) {
				return
			}
		}
	})
	got, err := s.ToSlice()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []int{0, 1}) || !cleaned {
		t.Errorf("got %v cleaned %v, want [0 1] and cleanup run", got, cleaned)
	}
	r, err := s.Next(nil)
	if err != nil || !r.Done {
		t.Errorf("got %v %v, want exhausted", r, err)
	}
}

func TestFromMap(t *testing.T) {
	m := map[string]int{"a": 1, "b": 2}
	pairs, err := FromMap(m).ToSlice()
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string]int)
	for _, p := range pairs {
		got[p.Left] = p.Right
	}
	if !maps.Equal(got, m) {
		t.Errorf("got %v, want %v", got, m)
	}
}

func TestAll_BreakCloses(t *testing.T) {
	src := newRecorder(1, 2, 3)
	s := FromIterator[int](src)
	var got []int
	for v := range s.All() {
		got = append(got, v)
		if v == 2 {
			break
		}
	}
	if !slices.Equal(got, []int{1, 2}) {
		t.Errorf("got %v", got)
	}
	if src.closes != 1 {
		t.Errorf("closed %d times, want 1", src.closes)
	}
	if s.Err() != nil {
		t.Errorf("unexpected error %v", s.Err())
	}
}

func TestAll_KeepsError(t *testing.T) {
	s := FromSlice([]int{1}).Take(-1)
	for range s.All() {
		t.Fatal("no element expected")
	}
	if !errors.IsRange(s.Err()) {
		t.Errorf("expected range error, got %v", s.Err())
	}
}
