package monitor

import (
	"reflect"
	"testing"
)

func TestParseCoreSpecSingletonsAndGroup(t *testing.T) {
	groups, err := parseCoreSpec("1,2,[3,4]")
	if err != nil {
		t.Fatalf("parseCoreSpec: %v", err)
	}
	want := []coreGroup{
		{desc: "1", cores: []int{1}},
		{desc: "2", cores: []int{2}},
		{desc: "3,4", cores: []int{3, 4}},
	}
	if !reflect.DeepEqual(groups, want) {
		t.Fatalf("groups = %+v, want %+v", groups, want)
	}
}

func TestParseCoreSpecExpandsRanges(t *testing.T) {
	groups, err := parseCoreSpec("0-2")
	if err != nil {
		t.Fatalf("parseCoreSpec: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 singleton groups, got %+v", groups)
	}
	for i, g := range groups {
		if len(g.cores) != 1 || g.cores[0] != i {
			t.Fatalf("group %d = %+v", i, g)
		}
	}
}

func TestParseCoreSpecBracketKeepsRawDescriptor(t *testing.T) {
	groups, err := parseCoreSpec("[0-1,4]")
	if err != nil {
		t.Fatalf("parseCoreSpec: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %+v", groups)
	}
	if groups[0].desc != "0-1,4" {
		t.Fatalf("descriptor = %q, want raw bracket contents", groups[0].desc)
	}
	if !reflect.DeepEqual(groups[0].cores, []int{0, 1, 4}) {
		t.Fatalf("cores = %v", groups[0].cores)
	}
}

func TestParseCoreSpecErrors(t *testing.T) {
	for _, body := range []string{"", ",", "[1,2", "[]", "x", "1,[a]", "1,,x"} {
		if _, err := parseCoreSpec(body); err == nil {
			t.Fatalf("parseCoreSpec(%q): expected error", body)
		}
	}
}

func TestParseList(t *testing.T) {
	got, err := parseList("5,1-3,8")
	if err != nil {
		t.Fatalf("parseList: %v", err)
	}
	if !reflect.DeepEqual(got, []int{5, 1, 2, 3, 8}) {
		t.Fatalf("parseList = %v", got)
	}
	for _, bad := range []string{"1,a", "3-1", "-2", "1.5"} {
		if _, err := parseList(bad); err == nil {
			t.Fatalf("parseList(%q): expected error", bad)
		}
	}
}
