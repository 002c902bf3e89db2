package events

import "testing"

func TestUnionCommutativeAndIdempotent(t *testing.T) {
	masks := []Mask{0, Occupancy, LocalBandwidth, RemoteBandwidth, Occupancy | RemoteBandwidth, All}
	for _, a := range masks {
		for _, b := range masks {
			if a.Union(b) != b.Union(a) {
				t.Fatalf("union not commutative for %v and %v", a, b)
			}
		}
		if a.Union(a) != a {
			t.Fatalf("union not idempotent for %v", a)
		}
	}
}

func TestHas(t *testing.T) {
	m := Occupancy | LocalBandwidth
	if !m.Has(Occupancy) || !m.Has(LocalBandwidth) {
		t.Fatalf("expected occupancy and local bandwidth in %v", m)
	}
	if m.Has(RemoteBandwidth) {
		t.Fatalf("did not expect remote bandwidth in %v", m)
	}
	if m.Has(Occupancy | RemoteBandwidth) {
		t.Fatalf("partial membership must not satisfy Has")
	}
}

func TestParsePrefix(t *testing.T) {
	cases := []struct {
		token string
		mask  Mask
		body  string
	}{
		{"llc:1,2", Occupancy, "1,2"},
		{"LLC:3", Occupancy, "3"},
		{"mbr:1", RemoteBandwidth, "1"},
		{"mbl:[0,1]", LocalBandwidth, "[0,1]"},
		{"all:0-3", All, "0-3"},
		{":5", All, "5"},
	}
	for _, c := range cases {
		mask, body, err := ParsePrefix(c.token)
		if err != nil {
			t.Fatalf("ParsePrefix(%q): %v", c.token, err)
		}
		if mask != c.mask || body != c.body {
			t.Fatalf("ParsePrefix(%q) = %v, %q; want %v, %q", c.token, mask, body, c.mask, c.body)
		}
	}
}

func TestParsePrefixRejectsUnknown(t *testing.T) {
	for _, token := range []string{"cache:1", "llc", "1,2,3", ""} {
		if _, _, err := ParsePrefix(token); err == nil {
			t.Fatalf("ParsePrefix(%q): expected error", token)
		}
	}
}

func TestResolve(t *testing.T) {
	platform := Occupancy | LocalBandwidth
	if got := All.Resolve(platform); got != platform {
		t.Fatalf("Resolve(all) = %v, want %v", got, platform)
	}
	if got := Occupancy.Resolve(platform); got != Occupancy {
		t.Fatalf("Resolve must pass plain masks through, got %v", got)
	}
	if got := All.Resolve(platform); got.IsAll() {
		t.Fatalf("sentinel survived resolution: %v", got)
	}
}

func TestMaskString(t *testing.T) {
	if got := (Occupancy | RemoteBandwidth).String(); got != "llc|mbr" {
		t.Fatalf("unexpected mask string %q", got)
	}
	if got := Mask(0).String(); got != "none" {
		t.Fatalf("unexpected zero mask string %q", got)
	}
	if got := All.String(); got != "all" {
		t.Fatalf("unexpected all mask string %q", got)
	}
}
