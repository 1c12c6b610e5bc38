package conv

import "testing"

func TestParseInt64(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"12", 12, true},
		{" 7 ", 7, true},
		{"12.0", 12, true},
		{"12.5", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseInt64(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseInt64(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"3.5", 3.5, true},
		{"  10 ", 10, true},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-Inf", 0, false},
		{"+infinity", 0, false},
		{"1e400", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseFloat(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseFloat(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{
		"alpha": 0.7,
		"n":     5,
		"name":  "hybrid",
	}
	if got := ConfigGet(m, "name", ""); got != "hybrid" {
		t.Errorf("ConfigGet(name) = %q", got)
	}
	if got := ConfigGet(m, "missing", "x"); got != "x" {
		t.Errorf("ConfigGet(missing) = %q", got)
	}
	if got := ConfigGetInt64(m, "n", 0); got != 5 {
		t.Errorf("ConfigGetInt64(n) = %d", got)
	}
	if got := ConfigGetFloat64(m, "alpha", 0); got != 0.7 {
		t.Errorf("ConfigGetFloat64(alpha) = %v", got)
	}
	if got := ConfigGetFloat64(m, "n", 0); got != 5 {
		t.Errorf("ConfigGetFloat64(n) = %v", got)
	}
}
