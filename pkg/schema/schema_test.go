package schema

import (
	"sort"
	"testing"
)

// ---------------------------------------------------------------------------
// Test: lookups for known and unknown names
// ---------------------------------------------------------------------------
func TestLookup(t *testing.T) {
	s, ok := Lookup("button")
	if !ok {
		t.Fatal("expected button to be registered")
	}
	if !s.Known || !s.AcceptsContent || s.AcceptsChildren {
		t.Errorf("unexpected button schema: %+v", s)
	}

	if _, ok := Lookup("user-card"); ok {
		t.Error("user-card must not be registered")
	}
}

func TestLookupOrContainerFallback(t *testing.T) {
	s := LookupOrContainer("user-card")
	if s.Known {
		t.Error("fallback schema must not be marked known")
	}
	if !s.AcceptsChildren {
		t.Error("fallback schema must accept children so components parse")
	}
	if s.AcceptsContent {
		t.Error("fallback schema must not accept content")
	}
}

// ---------------------------------------------------------------------------
// Test: content/children classification for a sample of elements
// ---------------------------------------------------------------------------
func TestElementClassification(t *testing.T) {
	tests := []struct {
		name     string
		content  bool
		children bool
	}{
		{"box", false, true},
		{"row", false, true},
		{"card", false, true},
		{"grid", false, true},
		{"text", true, false},
		{"heading", true, false},
		{"button", true, false},
		{"link", true, false},
		{"tab", true, true},
		{"input", false, false},
		{"image", false, false},
		{"divider", false, false},
		{"slot", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := Lookup(tt.name)
			if !ok {
				t.Fatalf("%s not registered", tt.name)
			}
			if s.AcceptsContent != tt.content {
				t.Errorf("AcceptsContent = %v, want %v", s.AcceptsContent, tt.content)
			}
			if s.AcceptsChildren != tt.children {
				t.Errorf("AcceptsChildren = %v, want %v", s.AcceptsChildren, tt.children)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Test: placement classes
// ---------------------------------------------------------------------------
func TestPlacementSets(t *testing.T) {
	for _, name := range []string{"meta", "screen", "define", "layout", "include"} {
		if !IsTopLevelOnly(name) {
			t.Errorf("%s should be top-level only", name)
		}
	}
	if IsTopLevelOnly("box") || IsTopLevelOnly("modal") {
		t.Error("box and modal are not top-level only")
	}

	for _, name := range []string{"modal", "drawer", "popover", "toast"} {
		if !IsOverlayKind(name) {
			t.Errorf("%s should be an overlay kind", name)
		}
	}
	if IsOverlayKind("screen") {
		t.Error("screen is not an overlay kind")
	}

	for _, name := range []string{"wire", "screen", "define", "layout", "repeat", "meta"} {
		if !IsStructural(name) {
			t.Errorf("%s should be structural", name)
		}
	}
}

func TestAllowsChildren(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"box", true},
		{"screen", true},
		{"repeat", true},
		{"modal", true},
		{"user-card", true}, // unknown names act as containers
		{"text", false},
		{"input", false},
		{"divider", false},
	}

	for _, tt := range tests {
		if got := AllowsChildren(tt.name); got != tt.expected {
			t.Errorf("AllowsChildren(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

// ---------------------------------------------------------------------------
// Test: property declarations and defaults
// ---------------------------------------------------------------------------
func TestPropOf(t *testing.T) {
	p, ok := PropOf("box", "gap")
	if !ok {
		t.Fatal("box.gap should be declared")
	}
	if p.Type != PropNumber {
		t.Errorf("box.gap type = %s, want number", p.Type)
	}
	if p.Default != 8.0 {
		t.Errorf("box.gap default = %v, want 8", p.Default)
	}

	p, ok = PropOf("button", "to")
	if !ok || p.Type != PropTarget {
		t.Errorf("button.to should be a target prop, got %+v ok=%v", p, ok)
	}

	if _, ok := PropOf("box", "missing"); ok {
		t.Error("box.missing should not be declared")
	}
	if _, ok := PropOf("nosuch", "gap"); ok {
		t.Error("props of unknown elements should not resolve")
	}
}

func TestOverlayProp(t *testing.T) {
	p, ok := OverlayProp("dismissible")
	if !ok || p.Type != PropBool || p.Default != true {
		t.Errorf("unexpected dismissible schema: %+v ok=%v", p, ok)
	}
	if _, ok := OverlayProp("gap"); ok {
		t.Error("gap is not an overlay prop")
	}
}

// ---------------------------------------------------------------------------
// Test: snapshot export is a deep copy
// ---------------------------------------------------------------------------
func TestSnapshotIsolation(t *testing.T) {
	snap := Snapshot()
	entry, ok := snap.Elements["box"]
	if !ok {
		t.Fatal("snapshot missing box")
	}
	entry.Props["gap"] = PropSchema{Type: PropString}

	if p, _ := PropOf("box", "gap"); p.Type != PropNumber {
		t.Error("mutating a snapshot must not affect the registry")
	}
}

func TestElementNamesSorted(t *testing.T) {
	names := ElementNames()
	if len(names) == 0 {
		t.Fatal("expected registered element names")
	}
	if !sort.StringsAreSorted(names) {
		t.Error("element names should be sorted")
	}
	found := false
	for _, n := range names {
		if n == "button" {
			found = true
		}
	}
	if !found {
		t.Error("button missing from element names")
	}
}
