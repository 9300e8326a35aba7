package sanitize

import (
	"strings"
	"testing"
)

func TestRichTextRemovesScript(t *testing.T) {
	got := RichText("<p>Hello</p><script>alert('xss')</script>")
	if got != "<p>Hello</p>" {
		t.Fatalf("expected script removed, got %q", got)
	}
}

func TestRichTextKeepsSafeMarkup(t *testing.T) {
	input := "<p><strong>Bold</strong> and <em>italic</em></p>"
	if got := RichText(input); got != input {
		t.Fatalf("expected safe markup preserved, got %q", got)
	}
}

func TestRichTextLinksGetNoFollow(t *testing.T) {
	got := RichText(`<a href="https://example.com">Link</a>`)
	if !strings.Contains(got, `rel="nofollow`) || !strings.Contains(got, "https://example.com") {
		t.Fatalf("expected nofollow link, got %q", got)
	}
	if strings.Contains(RichText(`<a href="javascript:alert(1)">x</a>`), "javascript:") {
		t.Fatalf("javascript href should be stripped")
	}
}

func TestPlainTextStripsTags(t *testing.T) {
	if got := PlainText("  <b>Go</b> & <i>gophers</i>  "); got != "Go & gophers" {
		t.Fatalf("unexpected plain text: %q", got)
	}
	if got := PlainText("<img src=x onerror=alert(1)>"); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := RichText("   "); got != "" {
		t.Fatalf("blank input should stay blank, got %q", got)
	}
}
