package redis

import "testing"

func TestEscapeMatch(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a*b", `a\*b`},
		{"a?b", `a\?b`},
		{"a[b]", `a\[b\]`},
		{`a\b`, `a\\b`},
		{"data/user/", "data/user/"},
	}
	for _, tc := range cases {
		if got := escapeMatch(tc.in); got != tc.want {
			t.Errorf("escapeMatch(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDedupeSorted(t *testing.T) {
	cases := []struct {
		in, want []string
	}{
		{nil, nil},
		{[]string{"a"}, []string{"a"}},
		{[]string{"a", "a"}, []string{"a"}},
		{[]string{"a", "a", "b", "c", "c", "c"}, []string{"a", "b", "c"}},
		{[]string{"a", "b", "c"}, []string{"a", "b", "c"}},
	}
	for _, tc := range cases {
		got := dedupeSorted(tc.in)
		if len(got) != len(tc.want) {
			t.Errorf("dedupeSorted(%v) = %v, want %v", tc.in, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("dedupeSorted(%v) = %v, want %v", tc.in, got, tc.want)
				break
			}
		}
	}
}

func TestNewRejectsNilClient(t *testing.T) {
	if _, err := New(Config{}); err != ErrNilClient {
		t.Fatalf("want ErrNilClient, got %v", err)
	}
}
