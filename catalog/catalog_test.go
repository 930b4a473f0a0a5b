package catalog

import (
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	rules, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(rules) != 19 {
		t.Fatalf("got %d rules, want 19", len(rules))
	}

	// authored order, S1 first
	if rules[0].Code != "S1" {
		t.Errorf("got first code %q, want S1", rules[0].Code)
	}
	if rules[len(rules)-1].Code != "S19" {
		t.Errorf("got last code %q, want S19", rules[len(rules)-1].Code)
	}

	seen := map[string]bool{}
	for _, r := range rules {
		if seen[r.Code] {
			t.Errorf("duplicate code %s", r.Code)
		}
		seen[r.Code] = true

		if r.Title == "" {
			t.Errorf("rule %s has no title", r.Code)
		}
		if r.Description == "" {
			t.Errorf("rule %s has no description", r.Code)
		}
	}
}

func TestDescriptionsAreRendered(t *testing.T) {
	rules, err := Load()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	for _, r := range rules {
		if !strings.Contains(r.Description, "<") {
			t.Errorf("rule %s description does not look like HTML: %q", r.Code, r.Description)
		}
	}
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out, err := renderMarkdown("hello <script>alert(1)</script> `code`")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("script tag survived sanitization: %q", out)
	}
	if !strings.Contains(out, "<code>code</code>") {
		t.Errorf("inline code was not rendered: %q", out)
	}
}
