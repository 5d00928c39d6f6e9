package richtext

import "github.com/microcosm-cc/bluemonday"

// StorePolicy mirrors the Sanitize allow-list as a bluemonday policy.
// It is applied at the persistence boundary as a second gate: Sanitize
// owns the unwrap semantics, the policy guarantees nothing outside the
// allow-list reaches storage even if a caller skips Sanitize.
func StorePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "strong", "i", "em", "u", "p", "br", "ul", "ol", "li", "div", "span", "a")
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowAttrs("data-mention", "data-email", "class").OnElements("span")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.RequireParseableURLs(true)
	return p
}
