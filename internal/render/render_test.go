package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/atelier/internal/errors"
	"github.com/hpungsan/atelier/internal/studio"
)

func TestMarkdownHTML(t *testing.T) {
	doc, err := MarkdownHTML("my <title>", "# Heading\n\nsome *emphasis*")
	if err != nil {
		t.Fatalf("MarkdownHTML failed: %v", err)
	}

	html := string(doc)
	if !strings.Contains(html, "<h1") || !strings.Contains(html, "<em>emphasis</em>") {
		t.Errorf("rendered HTML missing converted markdown: %s", html)
	}
	if !strings.Contains(html, "my &lt;title&gt;") {
		t.Errorf("title should be escaped: %s", html)
	}
}

func TestSaveResult_Image(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	raw := []byte{0x89, 0x50, 0x4e, 0x47}
	res := studio.ImageResult(studio.ToDataURL("image/png", raw))

	if err := SaveResult(res, path); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != string(raw) {
		t.Errorf("saved bytes = %v, want %v", got, raw)
	}
}

func TestSaveResult_TextMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.md")
	res := studio.TextResult("# Scene\n\nA quiet library.", []studio.Source{
		{URI: "https://a.example", Title: "Ref"},
	})

	if err := SaveResult(res, path); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	got, _ := os.ReadFile(path)
	if !strings.Contains(string(got), "A quiet library.") {
		t.Error("saved markdown missing body")
	}
	if !strings.Contains(string(got), "[Ref](https://a.example)") {
		t.Error("saved markdown missing sources section")
	}
}

func TestSaveResult_TextHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.html")
	res := studio.TextResult("# Scene", nil)

	if err := SaveResult(res, path); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	got, _ := os.ReadFile(path)
	if !strings.Contains(string(got), "<!DOCTYPE html>") || !strings.Contains(string(got), "<h1") {
		t.Error("saved file should be an HTML document")
	}
}

func TestSaveResult_Empty(t *testing.T) {
	err := SaveResult(studio.EmptyResult(), filepath.Join(t.TempDir(), "x"))
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("err = %v, want INVALID_REQUEST", err)
	}
}

func TestSourcesMarkdown_PreservesOrder(t *testing.T) {
	md := SourcesMarkdown([]studio.Source{
		{URI: "https://b.example", Title: "B"},
		{URI: "https://a.example", Title: "A"},
	})
	bIdx := strings.Index(md, "[B]")
	aIdx := strings.Index(md, "[A]")
	if bIdx < 0 || aIdx < 0 || bIdx > aIdx {
		t.Errorf("sources out of order: %q", md)
	}
}
