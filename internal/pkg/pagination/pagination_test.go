package pagination

import "testing"

func TestNewParamsClamps(t *testing.T) {
	p := NewParams(0, 1000)
	if p.Page != 1 || p.Limit != MaxLimit || p.Offset != 0 {
		t.Fatalf("unexpected params %+v", p)
	}

	p = NewParams(3, 0)
	if p.Limit != DefaultLimit || p.Offset != 2*DefaultLimit {
		t.Fatalf("unexpected params %+v", p)
	}
}

func TestGetMeta(t *testing.T) {
	m := GetMeta(NewParams(2, 10), 25)
	if m.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", m.TotalPages)
	}
	if !m.HasNext || !m.HasPrev {
		t.Fatalf("expected next and prev, got %+v", m)
	}

	m = GetMeta(NewParams(1, 10), 0)
	if m.TotalPages != 0 || m.HasNext || m.HasPrev {
		t.Fatalf("unexpected empty meta %+v", m)
	}
}
