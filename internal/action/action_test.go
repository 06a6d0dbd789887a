package action

import "testing"

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("press"); err != nil || k != Press {
		t.Errorf("ParseKind(press) = %v, %v", k, err)
	}
	if _, err := ParseKind("bogus"); err == nil {
		t.Error("ParseKind(bogus) should error")
	}
}

func TestParseModifiers(t *testing.T) {
	mods, err := ParseModifiers([]string{"command", "Control", "opt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Modifier{Cmd, Ctrl, Alt}
	if len(mods) != len(want) {
		t.Fatalf("got %v, want %v", mods, want)
	}
	for i := range want {
		if mods[i] != want[i] {
			t.Errorf("mods[%d] = %v, want %v", i, mods[i], want[i])
		}
	}

	if _, err := ParseModifiers([]string{"bogus"}); err == nil {
		t.Error("ParseModifiers([bogus]) should error")
	}
}

func TestParseMouseButtonDefault(t *testing.T) {
	b, err := ParseMouseButton("")
	if err != nil || b != ButtonLeft {
		t.Errorf("ParseMouseButton(\"\") = %v, %v, want %v, nil", b, err, ButtonLeft)
	}
	if _, err := ParseMouseButton("middle"); err == nil {
		t.Error("ParseMouseButton(middle) should error")
	}
}

func TestParseTypeModeDefault(t *testing.T) {
	m, err := ParseTypeMode("")
	if err != nil || m != ModeReplace {
		t.Errorf("ParseTypeMode(\"\") = %v, %v, want %v, nil", m, err, ModeReplace)
	}
	if _, err := ParseTypeMode("overwrite"); err == nil {
		t.Error("ParseTypeMode(overwrite) should error")
	}
}

func TestParseWaitConditionDefault(t *testing.T) {
	c, err := ParseWaitCondition("")
	if err != nil || c != ConditionExists {
		t.Errorf("ParseWaitCondition(\"\") = %v, %v, want %v, nil", c, err, ConditionExists)
	}
}

func TestKeyToAction(t *testing.T) {
	cases := map[string]Kind{"return": Confirm, "enter": Confirm, "escape": Cancel, "space": Press}
	for key, want := range cases {
		if got, ok := KeyToAction[key]; !ok || got != want {
			t.Errorf("KeyToAction[%q] = %v, %v, want %v", key, got, ok, want)
		}
	}
	if _, ok := KeyToAction["a"]; ok {
		t.Error("KeyToAction[a] should be absent")
	}
}
