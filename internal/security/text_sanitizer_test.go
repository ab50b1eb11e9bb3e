package security

import (
	"strings"
	"testing"
)

func TestTextSanitizer_Sanitize(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text unchanged", "Joe's Pizza", "Joe's Pizza"},
		{"ampersand kept", "Smith & Sons", "Smith & Sons"},
		{"tags stripped", "<b>Acme</b> Corp", "Acme Corp"},
		{"surrounding space trimmed", "  Main St  ", "Main St"},
		{"link stripped", `<a href="javascript:alert(1)">click</a>`, "click"},
		{"comparison kept", "budget 5 < 6k", "budget 5 < 6k"},
		{"encoded markup stripped", "&lt;script&gt;alert(1)&lt;/script&gt;Bob", "Bob"},
		{"double encoded markup stripped", "&amp;lt;b&amp;gt;Acme&amp;lt;/b&amp;gt;", "Acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextSanitizer_RemovesScript(t *testing.T) {
	got := NewTextSanitizer().Sanitize(`<script>alert("x")</script>Bob`)
	if strings.Contains(got, "<script") {
		t.Errorf("script tag survived: %q", got)
	}
	if !strings.Contains(got, "Bob") {
		t.Errorf("text content lost: %q", got)
	}
}

func TestTextSanitizer_RemovesEventHandlers(t *testing.T) {
	got := NewTextSanitizer().Sanitize(`<img src=x onerror="alert(1)">Note`)
	if strings.Contains(got, "onerror") {
		t.Errorf("event handler survived: %q", got)
	}
}

func TestTextSanitizer_Idempotent(t *testing.T) {
	s := NewTextSanitizer()

	inputs := []string{
		"<p>Call <em>after</em> 5pm</p>",
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&lt;b&gt;bold&lt;/b&gt; &amp; more",
		"Smith & Sons",
		"5 < 6",
	}

	for _, in := range inputs {
		once := s.Sanitize(in)
		if twice := s.Sanitize(once); twice != once {
			t.Errorf("Sanitize(%q): not idempotent: %q then %q", in, once, twice)
		}
		if strings.Contains(once, "<script") || strings.Contains(once, "<b>") {
			t.Errorf("Sanitize(%q) = %q, markup survived", in, once)
		}
	}
}
