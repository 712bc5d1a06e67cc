package llm

import "testing"

func TestNormalizeResponseText(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n  ", `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced_no_lang", "```\n{\"a\":1}\n```", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeResponseText(tc.in); got != tc.want {
				t.Errorf("normalizeResponseText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
