package counter

import "testing"

func TestCounter_MostCommon(t *testing.T) {
	c := New[string]()
	c.Add("/b", 3)
	c.Add("/a", 3)
	c.Inc("/c")
	c.Add("/d", 7)

	top := c.MostCommon(3)
	expected := []Entry[string]{{"/d", 7}, {"/a", 3}, {"/b", 3}}
	if len(top) != len(expected) {
		t.Fatalf("Expected %d entries, got %d", len(expected), len(top))
	}
	for i := range expected {
		if top[i] != expected[i] {
			t.Errorf("Entry %d: expected %+v, got %+v", i, expected[i], top[i])
		}
	}

	if all := c.MostCommon(0); len(all) != 4 {
		t.Errorf("Expected all 4 entries, got %d", len(all))
	}
	if c.Total() != 14 {
		t.Errorf("Expected total 14, got %d", c.Total())
	}
}

func TestCounter_MaxAndMerge(t *testing.T) {
	c := New[int]()
	if _, ok := c.Max(); ok {
		t.Error("Expected no max for empty counter")
	}

	c.Add(404, 2)
	other := New[int]()
	other.Add(404, 1)
	other.Add(500, 3)
	c.Merge(other)

	if c[404] != 3 || c[500] != 3 {
		t.Errorf("Unexpected merge result: %v", c)
	}
	top, _ := c.Max()
	if top.Key != 404 {
		t.Errorf("Expected tie to resolve to lowest key 404, got %d", top.Key)
	}
}
