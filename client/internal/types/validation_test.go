package types

import (
	"testing"

	"github.com/google/uuid"
)

func TestValidateUserID(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in string
		ok bool
	}{
		{uuid.NewString(), true},
		{"3ea7a8b3-93b4-44d1-b18e-f0a5b76ae31c", true},
		{"", false},
		{"user_1", false},
		{"3ea7a8b3-93b4-44d1", false},
	}
	for _, c := range cases {
		err := ValidateUserID(c.in)
		if c.ok && err != nil {
			t.Fatalf("expected ok for %q, got %v", c.in, err)
		}
		if !c.ok && err == nil {
			t.Fatalf("expected error for %q", c.in)
		}
	}
}

func TestValidateIDPresent(t *testing.T) {
	t.Parallel()
	if err := ValidateIDPresent("  ", "macroId"); err == nil {
		t.Fatal("expected error for blank id")
	}
	if err := ValidateIDPresent("m1", "macroId"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInputFromMacro(t *testing.T) {
	t.Parallel()
	m := Macro{
		ID:                "m1",
		Name:              "lights",
		Prompt:            "dim the lights",
		AllowOtherActions: true,
		RequiredActions:   []Action{{ID: "a1", Name: "lamp"}, {ID: "a2", Name: "blinds"}},
	}
	in := InputFromMacro(m)
	if in.Name != m.Name || in.Prompt != m.Prompt || !in.AllowOtherActions {
		t.Fatalf("unexpected input: %+v", in)
	}
	if len(in.RequiredActions) != 2 || in.RequiredActions[0] != "a1" || in.RequiredActions[1] != "a2" {
		t.Fatalf("unexpected required actions: %v", in.RequiredActions)
	}
}
