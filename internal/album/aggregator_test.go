package album

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestAggregator(quiet time.Duration) (*Aggregator, *fakeClock, *[]Finalized) {
	clock := &fakeClock{t: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	var got []Finalized
	a := New(quiet, func(_ context.Context, fin Finalized) {
		got = append(got, fin)
	})
	a.now = clock.now
	return a, clock, &got
}

func target(topicID string) Target {
	return Target{Kind: "dz", Section: "ЕГЭ 1-27", TopicID: topicID, TopicTitle: topicID}
}

func TestAggregator_BurstCoalescing(t *testing.T) {
	a, clock, got := newTestAggregator(1500 * time.Millisecond)
	snap := func() Target { return target("ege5") }

	a.AddItem(1, "g1", "f1", "", snap)
	clock.advance(500 * time.Millisecond)
	a.AddItem(1, "g1", "f2", "подпись", snap)
	clock.advance(500 * time.Millisecond)
	a.AddItem(1, "g1", "f3", "", snap)

	// тишина короче порога: буфер ещё живой
	clock.advance(time.Second)
	_ = a.Sweep(context.Background())
	if len(*got) != 0 {
		t.Fatalf("ожидали 0 финализаций, получили %d", len(*got))
	}

	clock.advance(time.Second)
	_ = a.Sweep(context.Background())
	if len(*got) != 1 {
		t.Fatalf("ожидали 1 финализацию, получили %d", len(*got))
	}
	fin := (*got)[0]
	if len(fin.FileIDs) != 3 || fin.FileIDs[0] != "f1" || fin.FileIDs[2] != "f3" {
		t.Fatalf("file_ids не в порядке поступления: %v", fin.FileIDs)
	}
	if fin.Caption != "подпись" {
		t.Fatalf("подпись потеряна: %q", fin.Caption)
	}
	if fin.Target.TopicID != "ege5" {
		t.Fatalf("назначение: %+v", fin.Target)
	}
	if a.Len() != 0 {
		t.Fatalf("буфер не удалён после финализации")
	}
}

func TestAggregator_SnapshotOnlyOnFirstItem(t *testing.T) {
	a, clock, got := newTestAggregator(1500 * time.Millisecond)

	current := target("ege1")
	snap := func() Target { return current }

	a.AddItem(7, "g", "f1", "", snap)
	current = target("ege2") // пользователь успел сменить сценарий
	a.AddItem(7, "g", "f2", "", snap)

	clock.advance(2 * time.Second)
	_ = a.Sweep(context.Background())

	if len(*got) != 1 {
		t.Fatalf("ожидали 1 финализацию, получили %d", len(*got))
	}
	if (*got)[0].Target.TopicID != "ege1" {
		t.Fatalf("назначение должно фиксироваться первым фото, получили %q", (*got)[0].Target.TopicID)
	}
}

func TestAggregator_SeparateBuffersPerUserAndGroup(t *testing.T) {
	a, clock, got := newTestAggregator(time.Second)
	snap := func() Target { return DefaultTarget() }

	a.AddItem(1, "g1", "a", "", snap)
	a.AddItem(1, "g2", "b", "", snap)
	a.AddItem(2, "g1", "c", "", snap)

	if a.Len() != 3 {
		t.Fatalf("ожидали 3 буфера, получили %d", a.Len())
	}

	clock.advance(2 * time.Second)
	_ = a.Sweep(context.Background())
	if len(*got) != 3 {
		t.Fatalf("ожидали 3 финализации, получили %d", len(*got))
	}
}

func TestAggregator_StragglerOpensNewBuffer(t *testing.T) {
	a, clock, got := newTestAggregator(time.Second)
	snap := func() Target { return DefaultTarget() }

	a.AddItem(1, "g", "f1", "", snap)
	clock.advance(2 * time.Second)
	_ = a.Sweep(context.Background())

	// фото из той же серии после финализации: новый буфер, не мутация старого
	a.AddItem(1, "g", "f2", "", snap)
	clock.advance(2 * time.Second)
	_ = a.Sweep(context.Background())

	if len(*got) != 2 {
		t.Fatalf("ожидали 2 финализации, получили %d", len(*got))
	}
	if len((*got)[0].FileIDs) != 1 || len((*got)[1].FileIDs) != 1 {
		t.Fatalf("опоздавшее фото попало в старый буфер: %v / %v", (*got)[0].FileIDs, (*got)[1].FileIDs)
	}
}

func TestFinalized_Summary(t *testing.T) {
	fin := Finalized{FileIDs: []string{"a", "b", "c"}}
	if fin.Summary() != "Альбом из 3 фото" {
		t.Fatalf("автотекст: %q", fin.Summary())
	}
	fin.Caption = "конспект по графам"
	if fin.Summary() != "конспект по графам" {
		t.Fatalf("подпись: %q", fin.Summary())
	}
}
