package memory

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello world"},
		{"  spaced \t out \n text  ", "spaced out text"},
		{"ALL-CAPS...AND___DOTS", "all caps and dots"},
		{"café №5", "café 5"},
		{"", ""},
		{"!!!", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Hello, World!",
		"  already   normal  ",
		"MiXeD CaSe 42",
		"unicode: Привет, мир!",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
