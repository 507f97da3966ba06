package rangeviz

import "testing"

func TestMapRejectsEmptySpan(t *testing.T) {
	if _, ok := Map(1.0, 2.0, 2.0); ok {
		t.Fatalf("zero span must be rejected")
	}
	if _, ok := Map(1.0, 3.0, 2.0); ok {
		t.Fatalf("inverted span must be rejected")
	}
}

func TestMapClamps(t *testing.T) {
	placement, ok := Map(0.0001, 100, 200)
	if !ok {
		t.Fatalf("expected placement")
	}
	if placement.Pct < 3 {
		t.Fatalf("far-below price must clamp to 3: %g", placement.Pct)
	}
	if placement.State != OutOfRange || placement.InRange {
		t.Fatalf("far-below price must be out of range: %+v", placement)
	}

	placement, ok = Map(1e9, 100, 200)
	if !ok {
		t.Fatalf("expected placement")
	}
	if placement.Pct > 97 {
		t.Fatalf("far-above price must clamp to 97: %g", placement.Pct)
	}
}

func TestMapCenter(t *testing.T) {
	placement, ok := Map(150, 100, 200)
	if !ok {
		t.Fatalf("expected placement")
	}
	if placement.State != Safe || !placement.InRange {
		t.Fatalf("centered price must be safe: %+v", placement)
	}
	if placement.Pct != 50 {
		t.Fatalf("centered price must map to 50%%: %g", placement.Pct)
	}
}

func TestMapNearEdge(t *testing.T) {
	// 0.5% into a 100-wide range: proximity 0.01, well under 0.15.
	placement, ok := Map(100.5, 100, 200)
	if !ok {
		t.Fatalf("expected placement")
	}
	if placement.State != NearEdge || !placement.InRange {
		t.Fatalf("price at edge must be near-edge: %+v", placement)
	}
}

func TestMapUpperBoundExclusive(t *testing.T) {
	placement, ok := Map(200, 100, 200)
	if !ok {
		t.Fatalf("expected placement")
	}
	if placement.InRange || placement.State != OutOfRange {
		t.Fatalf("price at upper bound is out of range: %+v", placement)
	}
}
