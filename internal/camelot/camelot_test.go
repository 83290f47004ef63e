package camelot

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		raw     string
		wantOK  bool
		wantNum int
		wantLet byte
	}{
		{"8A", true, 8, 'A'},
		{"12b", true, 12, 'B'},
		{"", false, 0, 0},
		{"unknown", false, 0, 0},
		{"13A", false, 0, 0},
		{"0A", false, 0, 0},
		{"garbage", false, 0, 0},
	}

	for _, c := range cases {
		got, ok := Parse(c.raw)
		if ok != c.wantOK {
			t.Fatalf("Parse(%q) ok = %v, want %v", c.raw, ok, c.wantOK)
		}
		if !ok {
			continue
		}
		if got.Number != c.wantNum || got.Letter != c.wantLet {
			t.Fatalf("Parse(%q) = %v, want {%d %c}", c.raw, got, c.wantNum, c.wantLet)
		}
	}
}

func TestCompatible(t *testing.T) {
	k := func(s string) *Key {
		key, _ := Parse(s)
		return key
	}

	cases := []struct {
		name string
		a, b *Key
		want bool
	}{
		{"identical", k("8A"), k("8A"), true},
		{"adjacent up same mode", k("8A"), k("9A"), true},
		{"adjacent down same mode", k("8A"), k("7A"), true},
		{"parallel major minor", k("8A"), k("8B"), true},
		{"wrap from 12 to 1", k("12A"), k("1A"), true},
		{"unrelated", k("8A"), k("3A"), false},
		{"same number far different letter ok", k("8A"), k("8B"), true},
		{"different number different letter", k("8A"), k("3B"), false},
		{"nil a is always compatible", nil, k("8A"), true},
		{"nil b is always compatible", k("8A"), nil, true},
		{"both nil", nil, nil, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Compatible(c.a, c.b); got != c.want {
				t.Errorf("Compatible(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
			}
			// compatibility must be symmetric
			if got := Compatible(c.b, c.a); got != c.want {
				t.Errorf("Compatible(%v, %v) (reversed) = %v, want %v", c.b, c.a, got, c.want)
			}
		})
	}
}

func TestDistance(t *testing.T) {
	k := func(s string) *Key {
		key, _ := Parse(s)
		return key
	}

	if d := Distance(k("8A"), k("8A")); d != 0 {
		t.Errorf("identical distance = %d, want 0", d)
	}
	if d := Distance(k("8A"), k("9A")); d != 1 {
		t.Errorf("adjacent distance = %d, want 1", d)
	}
	if d := Distance(k("8A"), k("8B")); d != 1 {
		t.Errorf("parallel distance = %d, want 1", d)
	}
	if d := Distance(k("8A"), k("3A")); d != 2 {
		t.Errorf("unrelated distance = %d, want 2", d)
	}
	if d := Distance(nil, k("8A")); d != 0 {
		t.Errorf("nil distance = %d, want 0", d)
	}
}
