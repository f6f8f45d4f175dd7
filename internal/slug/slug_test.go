package slug

import "testing"

func TestWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "two words", input: "Hello World", want: "hello-world"},
		{name: "punctuation run collapsed", input: "Rock & Roll", want: "rock-roll"},
		{name: "trailing punctuation kept as hyphen", input: "Hi there!", want: "hi-there-"},
		{name: "leading punctuation kept as hyphen", input: "...And Justice", want: "-and-justice"},
		{name: "underscore is a word char", input: "side_b", want: "side_b"},
		{name: "digits kept", input: "Vol. 2", want: "vol-2"},
		{name: "accents kept", input: "Café Noir", want: "café-noir"},
		{name: "tabs and newlines", input: "a\t\nb", want: "a-b"},
		{name: "empty", input: "", want: ""},
		{name: "only symbols", input: "!!!", want: "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Words(tt.input); got != tt.want {
				t.Errorf("Words(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
