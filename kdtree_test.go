package vtrace

import "testing"

func TestKDTreeNearestExactMatch(t *testing.T) {
	palette := []RGB{{0, 0, 0}, {255, 255, 255}, {200, 50, 50}}
	tree := newKDTree(palette)
	for i, c := range palette {
		if got := tree.nearest(c); got != i {
			t.Errorf("nearest(%v) = %d, want %d", c, got, i)
		}
	}
}

func TestKDTreeNearestApproximate(t *testing.T) {
	palette := []RGB{{0, 0, 0}, {255, 255, 255}}
	tree := newKDTree(palette)
	if got := tree.nearest(RGB{10, 10, 10}); got != 0 {
		t.Errorf("nearest(dark) = %d, want 0", got)
	}
	if got := tree.nearest(RGB{240, 240, 240}); got != 1 {
		t.Errorf("nearest(bright) = %d, want 1", got)
	}
}

func TestKDTreeSingleEntry(t *testing.T) {
	tree := newKDTree([]RGB{{100, 100, 100}})
	if got := tree.nearest(RGB{0, 0, 0}); got != 0 {
		t.Errorf("nearest() with single-entry palette = %d, want 0", got)
	}
}

func TestKDTreeEmpty(t *testing.T) {
	tree := newKDTree(nil)
	if got := tree.nearest(RGB{1, 2, 3}); got != -1 {
		t.Errorf("nearest() on empty tree = %d, want -1", got)
	}
}
