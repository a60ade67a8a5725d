package section

import "testing"

func TestCombine(t *testing.T) {
	tests := []struct {
		a, b Section
		want Section
		err  bool
	}{
		{Abs, Text, Text, false},
		{Data, Abs, Data, false},
		{Abs, Abs, Abs, false},
		{Text, Text, Text, false},
		{Data, Data, Data, false},
		{Text, Data, Undef, true},
		{Data, Text, Undef, true},
	}
	for _, tc := range tests {
		got, err := Combine(tc.a, tc.b)
		if tc.err {
			if err == nil {
				t.Errorf("Combine(%s, %s): expected error, got none", tc.a, tc.b)
			}
			continue
		}
		if err != nil {
			t.Errorf("Combine(%s, %s): unexpected error: %v", tc.a, tc.b, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Combine(%s, %s) = %s, want %s", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestIsAbs(t *testing.T) {
	if !Abs.IsAbs() {
		t.Error("Abs.IsAbs() = false")
	}
	if Text.IsAbs() || Data.IsAbs() || Undef.IsAbs() {
		t.Error("non-abs section reports IsAbs() = true")
	}
}
