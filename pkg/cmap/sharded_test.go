package cmap

import (
	"fmt"
	"sync"
	"testing"
)

func TestNewWithShards(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{2, 2},
		{64, 64},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := NewWithShards[string, int](tt.input)
			if m.ShardCount() != tt.expected {
				t.Errorf("NewWithShards(%d) shard count = %d, want %d",
					tt.input, m.ShardCount(), tt.expected)
			}
		})
	}
}

func TestSetGetDelete(t *testing.T) {
	m := New[string, int]()

	m.Set("a", 1)
	m.Set("b", 2)
	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = (%d, %v), want (1, true)", v, ok)
	}
	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) ok = true")
	}

	m.Delete("a")
	if m.Has("a") {
		t.Error("a should not exist after Delete")
	}
	m.Delete("missing")

	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count() after Clear = %d", m.Count())
	}
}

type jti string

func TestNamedStringKey(t *testing.T) {
	m := New[jti, bool]()
	m.Set(jti("0102"), true)
	if !m.Has("0102") {
		t.Error("Has() on named string key = false")
	}
}

func TestSetIfAbsentAndUpdate(t *testing.T) {
	m := New[string, int]()
	if !m.SetIfAbsent("k", 1) {
		t.Error("first SetIfAbsent() = false")
	}
	if m.SetIfAbsent("k", 2) {
		t.Error("second SetIfAbsent() = true")
	}
	got := m.Update("k", func(v int, ok bool) int {
		if !ok {
			t.Error("Update() saw missing key")
		}
		return v + 10
	})
	if got != 11 {
		t.Errorf("Update() = %d, want 11", got)
	}
}

func TestSweep(t *testing.T) {
	m := NewWithShards[string, int](4)
	for i := 0; i < 100; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}

	removed := m.Sweep(func(_ string, v int) bool { return v%2 == 0 })
	if removed != 50 {
		t.Errorf("Sweep() removed %d, want 50", removed)
	}
	m.Range(func(k string, v int) bool {
		if v%2 == 0 {
			t.Errorf("even value %d survived under %s", v, k)
		}
		return true
	})
}

func TestRange_Stop(t *testing.T) {
	m := New[string, int]()
	for i := 0; i < 10; i++ {
		m.Set(fmt.Sprintf("k%d", i), i)
	}
	n := 0
	m.Range(func(string, int) bool {
		n++
		return n < 3
	})
	if n != 3 {
		t.Errorf("Range visited %d entries after stop, want 3", n)
	}
}

func TestStats_Spread(t *testing.T) {
	m := NewWithShards[string, int](8)
	for i := 0; i < 800; i++ {
		m.Set(fmt.Sprintf("%014x", i), i)
	}
	total := 0
	for _, s := range m.Stats() {
		if s.Count == 0 {
			t.Errorf("shard %d is empty", s.Index)
		}
		total += s.Count
	}
	if total != 800 {
		t.Errorf("total = %d, want 800", total)
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[string, int]()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := fmt.Sprintf("%d-%d", g, i)
				m.Set(k, i)
				m.Get(k)
				if i%3 == 0 {
					m.Delete(k)
				}
			}
		}(g)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			m.Sweep(func(string, int) bool { return false })
			m.Count()
		}
	}()
	wg.Wait()

	want := 8 * (500 - 167)
	if m.Count() != want {
		t.Errorf("Count() = %d, want %d", m.Count(), want)
	}
}
