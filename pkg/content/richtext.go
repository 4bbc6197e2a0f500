package content

import "github.com/microcosm-cc/bluemonday"

// RichText is editor HTML stored verbatim. It is never serialized directly;
// read paths convert it to SafeHTML through a Sanitizer.
type RichText string

// SafeHTML is rich text that passed the sanitizer policy
type SafeHTML string

// AllowedTags lists the elements kept by the sanitizer
var AllowedTags = []string{
	"p", "br", "strong", "em", "u", "s",
	"a", "ul", "ol", "li",
	"h1", "h2", "h3", "h4", "h5", "h6",
	"blockquote", "code", "pre",
}

// Sanitizer strips everything outside the rich-text allow-list
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds the rich-text policy: AllowedTags, href/target/rel on
// links and class anywhere. Links must use http, https or mailto, or be
// relative.
func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedTags...)
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowAttrs("class").Globally()
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	return &Sanitizer{policy: p}
}

// Sanitize applies the policy
func (s *Sanitizer) Sanitize(text RichText) SafeHTML {
	return SafeHTML(s.policy.Sanitize(string(text)))
}
