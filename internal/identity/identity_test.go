package identity

import "testing"

func TestCompositeKeys(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"round", RoundID("1", 1), "1-1"},
		{"player pool", PlayerPoolID("0xB", "1"), "0xb-1"},
		{"choice", ChoiceID("0xB", "1", 1), "0xb-1-1"},
		{"event", EventID("0xABC", 7), "0xabc-7"},
		{"chain", ChainID(56), "56"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, tc.got, tc.want)
		}
	}
}

func TestKeysAreDeterministic(t *testing.T) {
	if ChoiceID("0xAbC", "12", 3) != ChoiceID("0xabc", "12", 3) {
		t.Fatalf("address casing must not change the key")
	}
	if RoundID("1", 12) == RoundID("11", 2) {
		t.Fatalf("round keys collide")
	}
}
