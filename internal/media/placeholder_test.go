package media

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlaceholderSVGDeterministic(t *testing.T) {
	first := PlaceholderSVG("Hello, World")
	second := PlaceholderSVG("Hello, World")
	if !bytes.Equal(first, second) {
		t.Error("same title produced different images")
	}

	other := PlaceholderSVG("Another Post")
	if bytes.Equal(first, other) {
		t.Error("different titles produced identical images")
	}
}

func TestPlaceholderSVGEscapesTitle(t *testing.T) {
	svg := string(PlaceholderSVG(`<script>alert("x")</script>`))
	if strings.Contains(svg, "<script>") {
		t.Error("title not escaped")
	}
	if !strings.HasPrefix(svg, "<svg ") {
		t.Errorf("unexpected prefix: %q", svg[:20])
	}
}

func TestPlaceholderSVGClipsLongTitles(t *testing.T) {
	long := strings.Repeat("verylongword ", 20)
	svg := string(PlaceholderSVG(long))
	if !strings.Contains(svg, "…") {
		t.Error("long title not clipped")
	}
}

func TestObjectName(t *testing.T) {
	cases := []struct {
		contentType string
		want        string
	}{
		{"image/png", "articles/art_1.png"},
		{"image/jpeg", "articles/art_1.jpg"},
		{"image/svg+xml", "articles/art_1.svg"},
		{"application/octet-stream", "articles/art_1.png"},
	}
	for _, c := range cases {
		if got := ObjectName("art_1", c.contentType); got != c.want {
			t.Errorf("ObjectName(%q) = %q, want %q", c.contentType, got, c.want)
		}
	}
}
