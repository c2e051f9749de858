package rules

import "testing"

const tagFilterScript = `
allow := func(target) {
	for _, t in target.tags {
		if t == "ice" {
			return false
		}
	}
	if target.mode == "zip" && target.distance > 100 {
		return false
	}
	return true
}
`

func TestFilterAllow(t *testing.T) {
	f, err := Compile(tagFilterScript)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	cases := []struct {
		name     string
		tags     []string
		mode     string
		distance float64
		want     bool
	}{
		{"plain swing", nil, "swing", 50, true},
		{"iced surface", []string{"ice"}, "swing", 50, false},
		{"long zip", nil, "zip", 150, false},
		{"short zip", nil, "zip", 50, true},
		{"other tags pass", []string{"metal", "wet"}, "swing", 50, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := f.Allow(c.tags, c.mode, c.distance)
			if err != nil {
				t.Fatalf("allow: %v", err)
			}
			if got != c.want {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}

func TestFilterErrors(t *testing.T) {
	if _, err := Compile("allow :="); err == nil {
		t.Fatalf("syntax error must fail compilation")
	}

	f, err := Compile("allow := 5")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if _, err := f.Allow(nil, "swing", 10); err == nil {
		t.Fatalf("calling a non-function must surface a run error")
	}
}

func TestNilFilterAllowsEverything(t *testing.T) {
	var f *Filter
	ok, err := f.Allow([]string{"ice"}, "zip", 1000)
	if err != nil || !ok {
		t.Fatalf("nil filter must allow, got %v err=%v", ok, err)
	}
}
