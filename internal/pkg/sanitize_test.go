package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "just text", "just text"},
		{"strips tags", "<b>bold</b> <i>it</i>", "bold it"},
		{"drops script", `hi<script>alert("x")</script>`, "hi"},
		{"keeps anchor", `<a href="https://example.com" title="t">x</a>`, `<a href="https://example.com" title="t" rel="nofollow">x</a>`},
		{"script then relative anchor", `<script>x</script><a href='y'>link</a>`, `<a href="y" rel="nofollow">link</a>`},
		{"drops javascript href", `<a href="javascript:alert(1)">x</a>`, "x"},
		{"linkifies bare url", "see https://example.com now", `see <a href="https://example.com" rel="nofollow">https://example.com</a> now`},
		{"linkifies www", "go to www.example.com", `go to <a href="http://www.example.com" rel="nofollow">www.example.com</a>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeDescription(tt.in))
		})
	}
}

func TestLinkifySkipsExistingAnchors(t *testing.T) {
	in := `<a href="https://example.com" rel="nofollow">https://example.com</a>`
	assert.Equal(t, in, Linkify(in))
}
