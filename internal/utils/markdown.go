package utils

import (
	"bytes"
	"html/template"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// previewRenderer turns a post's markdown body into the HTML shown by the
// preview endpoint. Heading anchors, code languages and footnotes survive
// sanitising; scripts and unknown link schemes do not.
type previewRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

var preview = newPreviewRenderer()

func newPreviewRenderer() *previewRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowURLSchemes("http", "https", "mailto")
	policy.RequireParseableURLs(true)
	policy.AllowImages()
	policy.AllowAttrs("id").Matching(regexp.MustCompile(`^[\w-]+$`)).OnElements("h1", "h2", "h3", "h4", "h5", "h6", "li", "sup")
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#-]+$`)).OnElements("code")
	policy.AllowAttrs("class").Matching(regexp.MustCompile(`^footnote(s|-ref|-backref)?$`)).OnElements("a", "div", "section")
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)

	return &previewRenderer{md: md, policy: policy}
}

func (r *previewRenderer) render(source string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		// raw text is still escaped by the sanitiser below
		buf.Reset()
		buf.WriteString(template.HTMLEscapeString(source))
	}
	return EnhanceHTMLContent(string(r.policy.SanitizeBytes(buf.Bytes())))
}

// RenderMarkdown converts post content to sanitised HTML for previews.
func RenderMarkdown(source string) template.HTML {
	return preview.render(source)
}
