package cachemem

import (
	"context"
	"strconv"
	"testing"

	"claimgen/internal/domain"
)

func node(id string) domain.PredicateNode {
	return &domain.Group{
		ID:      id,
		Logical: domain.LogicalAnd,
		Children: []domain.PredicateNode{
			&domain.Condition{
				ID:        id + "-c",
				FieldPath: "materials.primary",
				Operator:  domain.OpEquals,
				Value:     "Cotton",
				FieldType: domain.FieldTypeString,
			},
		},
	}
}

func TestCache_RoundTrip(t *testing.T) {
	cache := New(4)
	ctx := context.Background()

	if _, ok, _ := cache.Get(ctx, "missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}
	if err := cache.Put(ctx, "rule@1", node("g1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := cache.Get(ctx, "rule@1")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.NodeID() != "g1" {
		t.Fatalf("expected cached node g1, got %s", got.NodeID())
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := New(2)
	ctx := context.Background()

	if err := cache.Put(ctx, "a", node("a")); err != nil {
		t.Fatalf("put a: %v", err)
	}
	if err := cache.Put(ctx, "b", node("b")); err != nil {
		t.Fatalf("put b: %v", err)
	}
	// Touch a so b becomes the eviction candidate.
	if _, ok, _ := cache.Get(ctx, "a"); !ok {
		t.Fatalf("expected a to be cached")
	}
	if err := cache.Put(ctx, "c", node("c")); err != nil {
		t.Fatalf("put c: %v", err)
	}

	if _, ok, _ := cache.Get(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if _, ok, _ := cache.Get(ctx, "a"); !ok {
		t.Fatalf("expected a to survive")
	}
	if cache.Len() != 2 {
		t.Fatalf("expected bounded size 2, got %d", cache.Len())
	}
}

func TestCache_StaysBounded(t *testing.T) {
	cache := New(8)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		key := "rule@" + strconv.Itoa(i)
		if err := cache.Put(ctx, key, node(key)); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	if cache.Len() != 8 {
		t.Fatalf("expected 8 entries after churn, got %d", cache.Len())
	}
}
