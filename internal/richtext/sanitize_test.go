package richtext

import (
	"strings"
	"testing"
)

func TestSanitizeAllowList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bold_preserved",
			input: "<b>hi</b>",
			want:  "<b>hi</b>",
		},
		{
			name:  "paragraph_preserved",
			input: "<p>hello</p>",
			want:  "<p>hello</p>",
		},
		{
			name:  "script_tag_unwrapped",
			input: "<script>alert(1)</script>",
			want:  "alert(1)",
		},
		{
			name:  "event_handler_stripped",
			input: `<b onclick="alert(1)">hi</b>`,
			want:  "<b>hi</b>",
		},
		{
			name:  "javascript_href_stripped",
			input: `<a href="javascript:alert(1)">x</a>`,
			want:  "<a>x</a>",
		},
		{
			name:  "https_anchor_hardened",
			input: `<a href="https://example.com">x</a>`,
			want:  `<a href="https://example.com" target="_blank" rel="noopener noreferrer">x</a>`,
		},
		{
			name:  "mailto_anchor_allowed",
			input: `<a href="mailto:ana@x.com">ana</a>`,
			want:  `<a href="mailto:ana@x.com" target="_blank" rel="noopener noreferrer">ana</a>`,
		},
		{
			name:  "relative_anchor_allowed",
			input: `<a href="/sites/page">here</a>`,
			want:  `<a href="/sites/page" target="_blank" rel="noopener noreferrer">here</a>`,
		},
		{
			name:  "unknown_tag_unwrapped_keeps_children",
			input: "<article><b>kept</b> text</article>",
			want:  "<b>kept</b> text",
		},
		{
			name:  "nested_disallowed_inside_unwrapped",
			input: "<article><iframe>inner</iframe></article>",
			want:  "inner",
		},
		{
			name:  "comment_removed",
			input: "a<!-- secret -->b",
			want:  "ab",
		},
		{
			name:  "nested_comment_removed",
			input: "<p>a<!-- x --><b>b</b></p>",
			want:  "<p>a<b>b</b></p>",
		},
		{
			name:  "span_class_stripped_without_mention_marker",
			input: `<span class="evil">x</span>`,
			want:  "<span>x</span>",
		},
		{
			name:  "span_class_kept_with_mention_marker",
			input: `<span data-mention="7" class="mention">@Ana</span>`,
			want:  `<span data-mention="7" class="mention">@Ana</span>`,
		},
		{
			name:  "mention_email_attr_kept",
			input: `<span data-mention="7" data-email="ana@x.com">@Ana</span>`,
			want:  `<span data-mention="7" data-email="ana@x.com">@Ana</span>`,
		},
		{
			name:  "style_attr_stripped",
			input: `<p style="position:fixed">x</p>`,
			want:  "<p>x</p>",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "list_preserved",
			input: "<ul><li>one</li><li><em>two</em></li></ul>",
			want:  "<ul><li>one</li><li><em>two</em></li></ul>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"<b>hi</b>",
		`<a href="https://example.com">x</a>`,
		"<script>alert(1)</script>",
		"<article><b>kept</b> text</article>",
		`<span class="evil">x</span>`,
		"<ul><li>one</li></ul>",
		"plain & <i>mixed</i> text",
		`<div><span data-mention="1" class="mention">@Ana</span> hello</div>`,
	}

	for _, input := range inputs {
		once := Sanitize(input)
		twice := Sanitize(once)
		if once != twice {
			t.Fatalf("Sanitize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>hello <b>world</b></p>", "hello world"},
		{"", ""},
		{"no tags", "no tags"},
		{`<span data-mention="1">@Ana</span> hi`, "@Ana hi"},
	}

	for _, tt := range tests {
		if got := PlainText(tt.input); got != tt.want {
			t.Fatalf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("<p>  \n </p>") {
		t.Fatal("whitespace-only markup should be blank")
	}
	if IsBlank("<p>x</p>") {
		t.Fatal("markup with text should not be blank")
	}
}

func TestStorePolicyBlocksActiveContent(t *testing.T) {
	p := StorePolicy()

	out := p.Sanitize(`<b>ok</b><script>alert(1)</script><a href="javascript:x">y</a>`)
	if strings.Contains(out, "script") || strings.Contains(out, "javascript") {
		t.Fatalf("store policy let active content through: %q", out)
	}
	if !strings.Contains(out, "<b>ok</b>") {
		t.Fatalf("store policy dropped allowed markup: %q", out)
	}
}
