package service

import "github.com/microcosm-cc/bluemonday"

// htmlPolicy allows the same minimal formatting set the templates render
// raw: paragraphs, line breaks and emphasis. Everything else is stripped
// from user-supplied and external HTML before it touches the database or a
// page.
var htmlPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em")
	return p
}()

// SanitizeHTML strips all markup except basic formatting tags.
func SanitizeHTML(s string) string {
	return htmlPolicy.Sanitize(s)
}
