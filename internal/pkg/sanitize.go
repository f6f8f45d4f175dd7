package pkg

import (
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"mvdan.cc/xurls/v2"
)

var (
	descriptionPolicy = newDescriptionPolicy()
	bareURL           = xurls.Relaxed()
)

// 只保留 <a href title>，其余标签剥离
func newDescriptionPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.RequireNoFollowOnLinks(true)
	return p
}

// SanitizeDescription 净化 + 自动识别链接
func SanitizeDescription(raw string) string {
	if raw == "" {
		return ""
	}
	return Linkify(descriptionPolicy.Sanitize(raw))
}

// Linkify wraps bare URLs found in text nodes with nofollow anchors.
// Text already inside an anchor is left untouched.
func Linkify(fragment string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	anchorDepth := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return b.String()
			}
			// 非法片段：原样返回
			return fragment
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "a" {
				anchorDepth++
			}
			b.Write(z.Raw())
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "a" && anchorDepth > 0 {
				anchorDepth--
			}
			b.Write(z.Raw())
		case html.TextToken:
			if anchorDepth > 0 {
				b.Write(z.Raw())
				continue
			}
			linkifyText(&b, string(z.Text()))
		default:
			b.Write(z.Raw())
		}
	}
}

func linkifyText(b *strings.Builder, text string) {
	last := 0
	for _, loc := range bareURL.FindAllStringIndex(text, -1) {
		b.WriteString(html.EscapeString(text[last:loc[0]]))
		u := text[loc[0]:loc[1]]
		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(withScheme(u)))
		b.WriteString(`" rel="nofollow">`)
		b.WriteString(html.EscapeString(u))
		b.WriteString("</a>")
		last = loc[1]
	}
	b.WriteString(html.EscapeString(text[last:]))
}

func withScheme(u string) string {
	if strings.Contains(u, "://") || strings.HasPrefix(u, "mailto:") {
		return u
	}
	if strings.Contains(u, "@") && !strings.Contains(u, "/") {
		return "mailto:" + u
	}
	return "http://" + u
}
