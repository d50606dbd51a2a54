package schema

import (
	"encoding/json"
	"testing"
)

func mustMarshal(t *testing.T, a Answer) string {
	t.Helper()
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

// Answers marshal as the bare wire value of their kind, not as a struct.
func TestAnswer_MarshalJSON(t *testing.T) {
	cases := []struct {
		name string
		a    Answer
		want string
	}{
		{"single", SingleAnswer(KindSingleChoice, "rent_deposit"), `"rent_deposit"`},
		{"boolean", SingleAnswer(KindBoolean, "yes"), `"yes"`},
		{"multi", MultiAnswer([]string{"crypto", "vehicle"}), `["crypto","vehicle"]`},
		{"multi empty", MultiAnswer(nil), `[]`},
		{"numeric", NumericAnswer(3000000), `3000000`},
		{"form", FormAnswer(map[string]int64{"cash_amount": 0}), `{"cash_amount":0}`},
		{"form empty", FormAnswer(nil), `{}`},
	}
	for _, c := range cases {
		if got := mustMarshal(t, c.a); got != c.want {
			t.Errorf("%s: marshal = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestAnswer_MarshalJSON_Unsubmittable(t *testing.T) {
	if _, err := json.Marshal(Answer{Kind: KindTerminal}); err == nil {
		t.Error("expected error for terminal answer")
	}
}

func TestAnswer_Contains(t *testing.T) {
	a := MultiAnswer([]string{"crypto", "vehicle"})
	if !a.Contains("crypto") {
		t.Error("Contains(crypto) = false")
	}
	if a.Contains("securities") {
		t.Error("Contains(securities) = true")
	}
	// Non-selection kinds are empty sets.
	if SingleAnswer(KindSingleChoice, "crypto").Contains("crypto") {
		t.Error("single answer should not contain values")
	}
}

// A form answer distinguishes an absent field from an explicit zero.
func TestAnswer_FormAbsentVsZero(t *testing.T) {
	withZero := mustMarshal(t, FormAnswer(map[string]int64{"cash_amount": 0}))
	without := mustMarshal(t, FormAnswer(map[string]int64{}))
	if withZero == without {
		t.Errorf("absent and zero marshal identically: %s", withZero)
	}
}
