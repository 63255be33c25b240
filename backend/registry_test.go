package backend

import (
	"errors"
	"image/color"
	"testing"
)

// stubBackend is a minimal backend for registry tests.
type stubBackend struct {
	name      string
	available bool
	inits     int
	cleared   int
}

func (b *stubBackend) Name() string     { return b.name }
func (b *stubBackend) Available() bool  { return b.available }
func (b *stubBackend) Init() error      { b.inits++; return nil }
func (b *stubBackend) ClearFontCache()  { b.cleared++ }
func (b *stubBackend) Close()           {}
func (b *stubBackend) NewCanvas(w, h int) (Canvas, error) {
	return NewRasterCanvas(w, h)
}

func TestGetUnknownBackend(t *testing.T) {
	_, err := Get("no-such-backend")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Get(unknown) = %v, want *NotFoundError", err)
	}
	if nf.Name != "no-such-backend" {
		t.Errorf("NotFoundError.Name = %q", nf.Name)
	}
}

func TestSwitchUnavailableBackend(t *testing.T) {
	Register("stub-unavailable", func() Backend {
		return &stubBackend{name: "stub-unavailable"}
	})

	err := Switch("stub-unavailable")
	var ua *UnavailableError
	if !errors.As(err, &ua) {
		t.Fatalf("Switch(unavailable) = %v, want *UnavailableError", err)
	}
	if ua.Name != "stub-unavailable" {
		t.Errorf("UnavailableError.Name = %q", ua.Name)
	}
}

func TestSwitchAndCurrent(t *testing.T) {
	stub := &stubBackend{name: "stub-ok", available: true}
	Register("stub-ok", func() Backend { return stub })

	if err := Switch("stub-ok"); err != nil {
		t.Fatalf("Switch() = %v", err)
	}
	if Current() != Backend(stub) {
		t.Error("Current() is not the switched backend")
	}
	if got := CurrentName(); got != "stub-ok" {
		t.Errorf("CurrentName() = %q, want %q", got, "stub-ok")
	}
	if stub.inits != 1 {
		t.Errorf("Init called %d times, want 1", stub.inits)
	}

	// Switching away and back keeps the instance initialized; Init runs
	// again but the same instance is reused.
	if err := Switch("image"); err != nil {
		t.Fatalf("Switch(image) = %v", err)
	}
	if err := Switch("stub-ok"); err != nil {
		t.Fatalf("Switch back = %v", err)
	}
	if stub.inits != 2 {
		t.Errorf("Init called %d times after switch-back, want 2", stub.inits)
	}
}

func TestRegisteredIncludesImage(t *testing.T) {
	names := Registered()
	found := false
	for _, n := range names {
		if n == "image" {
			found = true
		}
	}
	if !found {
		t.Errorf("Registered() = %v, missing %q", names, "image")
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Registered() not sorted: %v", names)
			break
		}
	}
}

func TestClearFontCachesReachesConstructedBackends(t *testing.T) {
	stub := &stubBackend{name: "stub-caches", available: true}
	Register("stub-caches", func() Backend { return stub })

	// Not constructed yet, so the clear cannot reach it.
	ClearFontCaches()
	if stub.cleared != 0 {
		t.Fatalf("cache cleared %d times before construction", stub.cleared)
	}

	if _, err := Get("stub-caches"); err != nil {
		t.Fatalf("Get() = %v", err)
	}
	ClearFontCaches()
	if stub.cleared != 1 {
		t.Errorf("cache cleared %d times, want 1", stub.cleared)
	}
}

func TestRasterCanvasInvalidSize(t *testing.T) {
	for _, size := range [][2]int{{0, 10}, {10, 0}, {-1, 5}} {
		if _, err := NewRasterCanvas(size[0], size[1]); err == nil {
			t.Errorf("NewRasterCanvas(%d, %d) did not error", size[0], size[1])
		}
	}
}

func TestRasterCanvasSnapshotIsCopy(t *testing.T) {
	c, err := NewRasterCanvas(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	// The snapshot is taken of the zeroed buffer; clearing the canvas
	// afterwards must not show through.
	snap := c.Snapshot()
	c.Clear(color.White)
	if r, _, _, a := snap.At(1, 1).RGBA(); r != 0 || a != 0 {
		t.Error("snapshot changed after drawing on the canvas")
	}
}
