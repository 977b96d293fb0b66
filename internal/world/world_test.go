package world

import (
	"math"
	"testing"
)

func TestNodeTakeNeverBelowZero(t *testing.T) {
	n := &Node{Kind: NodeForest, Position: Pos(5, 5), Remaining: 10}

	total := 0.0
	steps := 0
	for !n.Depleted() {
		total += n.Take(0.63)
		steps++
		if n.Remaining < 0 {
			t.Fatalf("remaining went negative: %v", n.Remaining)
		}
	}
	if want := int(math.Ceil(10 / 0.63)); steps != want {
		t.Errorf("depleted in %d takes, want %d", steps, want)
	}
	if math.Abs(total-10) > 1e-9 {
		t.Errorf("total withdrawn = %v, want 10", total)
	}
	if got := n.Take(0.63); got != 0 {
		t.Errorf("take from depleted node = %v, want 0", got)
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	a := r.Add(NodeForest, Pos(5, 5), 0)
	b := r.Add(NodeForest, Pos(7, 1), 300)
	r.Add(NodeBerries, Pos(5, 5), 200)

	if got := r.At(NodeForest, Pos(5, 5)); got != a {
		t.Errorf("At(forest, 5,5) = %v, want first forest", got)
	}
	if got := r.At(NodeChicken, Pos(5, 5)); got != nil {
		t.Errorf("At(chicken) = %v, want nil", got)
	}
	if got := r.FirstAvailable(NodeForest); got != b {
		t.Errorf("FirstAvailable skipped nothing: %v", got)
	}
	if got := r.Remaining(NodeForest); got != 300 {
		t.Errorf("Remaining(forest) = %v, want 300", got)
	}
	if r.Count(NodeBerries) != 1 {
		t.Errorf("Count(berries) = %d", r.Count(NodeBerries))
	}
}

func TestParseNodeKind(t *testing.T) {
	for _, kw := range []string{"forest", "berries", "chicken"} {
		k, err := ParseNodeKind(kw)
		if err != nil {
			t.Fatalf("ParseNodeKind(%q): %v", kw, err)
		}
		if k.String() != kw {
			t.Errorf("round trip %q -> %q", kw, k.String())
		}
	}
	if _, err := ParseNodeKind("gold"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestDistance(t *testing.T) {
	if d := Distance(Pos(0, 0), Pos(3, 4)); d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Seed = 7

	r1, r2 := NewRegistry(), NewRegistry()
	n1 := Generate(cfg, r1)
	n2 := Generate(cfg, r2)
	if n1 != n2 {
		t.Fatalf("node counts differ: %d vs %d", n1, n2)
	}
	for k := NodeKind(0); k < NumNodeKinds; k++ {
		a, b := r1.Nodes(k), r2.Nodes(k)
		if len(a) != len(b) {
			t.Fatalf("%s counts differ", k)
		}
		for i := range a {
			if *a[i] != *b[i] {
				t.Errorf("%s node %d differs: %+v vs %+v", k, i, a[i], b[i])
			}
			if Distance(a[i].Position, Origin) < cfg.ClearZone {
				t.Errorf("%s node inside clear zone: %v", k, a[i].Position)
			}
			if a[i].Remaining <= 0 {
				t.Errorf("%s node generated empty", k)
			}
		}
	}
}
