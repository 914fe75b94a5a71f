package snapshot

import (
	"encoding/json"
	"testing"
)

func TestHash_IndependentOfKeyOrder(t *testing.T) {
	hasher := New()
	a := map[string]any{
		"materials":   map[string]any{"primary": "Cotton", "recycledContent": float64(40)},
		"productInfo": map[string]any{"productName": "Shirt"},
	}
	b := map[string]any{
		"productInfo": map[string]any{"productName": "Shirt"},
		"materials":   map[string]any{"recycledContent": float64(40), "primary": "Cotton"},
	}
	hashA, err := hasher.Hash(a)
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	hashB, err := hasher.Hash(b)
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if hashA != hashB {
		t.Fatalf("deeply equal documents must hash identically")
	}
}

func TestHash_DetectsChange(t *testing.T) {
	hasher := New()
	base := map[string]any{"materials": map[string]any{"certifiedOrganic": true}}
	changed := map[string]any{"materials": map[string]any{"certifiedOrganic": false}}
	hashBase, err := hasher.Hash(base)
	if err != nil {
		t.Fatalf("hash base: %v", err)
	}
	hashChanged, err := hasher.Hash(changed)
	if err != nil {
		t.Fatalf("hash changed: %v", err)
	}
	if hashBase == hashChanged {
		t.Fatalf("different documents must not collide")
	}
}

func TestHash_StableAcrossJSONRoundTrip(t *testing.T) {
	hasher := New()
	original := map[string]any{
		"materials": map[string]any{"recycledContent": float64(55.5)},
		"tags":      []any{"organic", "recycled"},
		"note":      nil,
	}
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	first, err := hasher.Hash(original)
	if err != nil {
		t.Fatalf("hash original: %v", err)
	}
	second, err := hasher.Hash(decoded)
	if err != nil {
		t.Fatalf("hash decoded: %v", err)
	}
	if first != second {
		t.Fatalf("hash must survive a JSON round trip")
	}
}

func TestHash_EmptyDocument(t *testing.T) {
	hasher := New()
	first, err := hasher.Hash(map[string]any{})
	if err != nil {
		t.Fatalf("hash empty map: %v", err)
	}
	second, err := hasher.Hash(nil)
	if err != nil {
		t.Fatalf("hash nil: %v", err)
	}
	if first != second {
		t.Fatalf("nil and empty documents should hash identically")
	}
}
