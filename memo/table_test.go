package memo_test

import (
	"errors"
	"testing"

	"github.com/tailored-agentic-units/pipeline/memo"
	"github.com/tailored-agentic-units/pipeline/record"
)

type pair struct {
	A int
	B string
}

type holder struct {
	V any
}

func mustKey(t *testing.T, values ...any) memo.Key {
	t.Helper()
	fields := make([]string, len(values))
	k, err := memo.NewKey(fields, values)
	if err != nil {
		t.Fatalf("NewKey(%v) failed: %v", values, err)
	}
	return k
}

func TestNewKey_Equality(t *testing.T) {
	tests := []struct {
		name  string
		a, b  []any
		equal bool
	}{
		{name: "same ints", a: []any{1, 2}, b: []any{1, 2}, equal: true},
		{name: "different order", a: []any{1, 2}, b: []any{2, 1}, equal: false},
		{name: "int vs int64", a: []any{1}, b: []any{int64(1)}, equal: false},
		{name: "different arity", a: []any{1}, b: []any{1, nil}, equal: false},
		{name: "nil values", a: []any{nil, "x"}, b: []any{nil, "x"}, equal: true},
		{name: "structs", a: []any{pair{1, "a"}}, b: []any{pair{1, "a"}}, equal: true},
		{name: "no inputs", a: []any{}, b: []any{}, equal: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustKey(t, tt.a...) == mustKey(t, tt.b...); got != tt.equal {
				t.Errorf("expected equal=%v, got %v", tt.equal, got)
			}
		})
	}
}

func TestNewKey_NonComparable(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		field  string
	}{
		{name: "slice", values: []any{1, []int{1}}, field: "b"},
		{name: "map", values: []any{map[string]int{}}, field: "a"},
		{name: "func", values: []any{func() {}}, field: "a"},
		{name: "struct holding slice", values: []any{holder{V: []int{1}}}, field: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := memo.NewKey([]string{"a", "b"}, tt.values)

			var keyErr *memo.CacheKeyError
			if !errors.As(err, &keyErr) {
				t.Fatalf("expected CacheKeyError, got %v", err)
			}
			if keyErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, keyErr.Field)
			}
		})
	}
}

func TestTable_GetAdd(t *testing.T) {
	table, err := memo.New(0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if table.Size() != memo.DefaultSize {
		t.Errorf("expected default size %d, got %d", memo.DefaultSize, table.Size())
	}

	k := mustKey(t, 5)
	if _, ok := table.Get(k); ok {
		t.Fatal("expected miss on empty table")
	}

	table.Add(k, record.Record{"x2": 10})
	got, ok := table.Get(k)
	if !ok || got["x2"] != 10 {
		t.Fatalf("expected hit with x2=10, got %v (ok=%v)", got, ok)
	}

	got["x2"] = 0
	again, _ := table.Get(k)
	if again["x2"] != 10 {
		t.Error("expected stored record to be isolated from callers")
	}

	stats := table.Stats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %+v", stats)
	}
}

func TestTable_EvictsLeastRecentlyUsed(t *testing.T) {
	table, err := memo.New(2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	k1, k2, k3 := mustKey(t, 1), mustKey(t, 2), mustKey(t, 3)
	table.Add(k1, record.Record{"v": 1})
	table.Add(k2, record.Record{"v": 2})
	table.Get(k1)
	table.Add(k3, record.Record{"v": 3})

	if _, ok := table.Get(k2); ok {
		t.Error("expected least recently used key to be evicted")
	}
	if _, ok := table.Get(k1); !ok {
		t.Error("expected recently used key to remain")
	}
	if table.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", table.Len())
	}
}

func TestTable_Purge(t *testing.T) {
	table, err := memo.New(4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	table.Add(mustKey(t, 1), record.Record{})
	table.Purge()

	if table.Len() != 0 {
		t.Errorf("expected empty table after purge, got %d", table.Len())
	}
}

func TestTable_Resize(t *testing.T) {
	table, err := memo.New(0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if table.Size() != memo.DefaultSize {
		t.Fatalf("expected default size %d, got %d", memo.DefaultSize, table.Size())
	}

	for i := range 3 {
		table.Add(mustKey(t, i), record.Record{"v": i})
	}

	table.Resize(1)
	if table.Size() != 1 {
		t.Errorf("expected size 1, got %d", table.Size())
	}
	if table.Len() != 1 {
		t.Errorf("expected 1 entry after shrinking, got %d", table.Len())
	}
	if _, ok := table.Get(mustKey(t, 2)); !ok {
		t.Error("expected most recently added key to survive")
	}

	table.Resize(0)
	if table.Size() != 1 {
		t.Errorf("expected non-positive resize to be ignored, got %d", table.Size())
	}
}
