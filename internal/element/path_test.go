package element

import "testing"

func TestParseIndexList(t *testing.T) {
	cases := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"0", []int{0}, false},
		{"0,3,1", []int{0, 3, 1}, false},
		{" 0 , 3 ", []int{0, 3}, false},
		{"a,b", nil, true},
		{"-1", nil, true},
	}

	for _, tc := range cases {
		got, err := ParseIndexList(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseIndexList(%q): expected error, got none", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseIndexList(%q): unexpected error: %v", tc.in, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("ParseIndexList(%q) = %v, want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("ParseIndexList(%q)[%d] = %d, want %d", tc.in, i, got[i], tc.want[i])
			}
		}
	}
}

func TestPathString(t *testing.T) {
	p := Path{PID: 42, Index: []int{0, 3, 1}}
	if got, want := p.String(), "0,3,1"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := (Path{}).String(), ""; got != want {
		t.Errorf("empty String() = %q, want %q", got, want)
	}
}

func TestFrameCenter(t *testing.T) {
	f := Frame{X: 100, Y: 200, Width: 80, Height: 40}
	x, y := f.Center()
	if x != 140 || y != 220 {
		t.Errorf("Center() = (%v, %v), want (140, 220)", x, y)
	}
}

func TestInfoHasAction(t *testing.T) {
	info := Info{Actions: []string{"press", "showMenu"}}
	if !info.HasAction("press") {
		t.Error("HasAction(press) = false, want true")
	}
	if info.HasAction("setValue") {
		t.Error("HasAction(setValue) = true, want false")
	}
}
