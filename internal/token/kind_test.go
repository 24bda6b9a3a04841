package token

import "testing"

func TestLookupKeyword(t *testing.T) {
	cases := []struct {
		text string
		want Kind
	}{
		{"function", KwFunction},
		{"return", KwReturn},
		{"undefined", KwUndefined},
	}
	for _, c := range cases {
		got, ok := Lookup(c.text)
		if !ok || got != c.want {
			t.Errorf("Lookup(%q) = (%v, %v), want (%v, true)", c.text, got, ok, c.want)
		}
	}
}

func TestLookupPlainIdent(t *testing.T) {
	if _, ok := Lookup("foobar"); ok {
		t.Errorf("Lookup(foobar) should not match a keyword")
	}
}

func TestKindString(t *testing.T) {
	if KwFunction.String() != "function" {
		t.Errorf("KwFunction.String() = %q", KwFunction.String())
	}
	if Kind(255).String() != "UNKNOWN" {
		t.Errorf("unknown kind should stringify to UNKNOWN")
	}
}
