package keywords

import (
	"reflect"
	"testing"
)

func TestCount(t *testing.T) {
	m := New("startup", "startups", "credit", "credits", "sign in", "Grant")

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "no hits", text: "a newsletter about gardening", want: 0},
		{name: "word and its plural", text: "startups get credits", want: 4},
		{name: "repeated word counts once", text: "credit credit credit", want: 1},
		{name: "phrase", text: "please sign in to continue", want: 1},
		{name: "list is lowercased", text: "a grant for founders", want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Count(tt.text); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatched(t *testing.T) {
	m := New("privacy", "cookie", "menu")
	got := m.Matched("menu | cookie settings | cookie policy")
	if want := []string{"cookie", "menu"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Matched() = %v, want %v", got, want)
	}
}

func TestNilAndEmptyMatcher(t *testing.T) {
	var m *Matcher
	if m.Count("anything") != 0 {
		t.Error("nil matcher counted hits")
	}
	if New().Count("anything") != 0 {
		t.Error("empty matcher counted hits")
	}
}
