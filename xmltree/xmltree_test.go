package xmltree

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const doc = `<?xml version="1.0"?>
<root version="2.0">
  <first kind="a"/>
  <second/>
  <first kind="b"/>
</root>`

func TestParse(t *testing.T) {
	root, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if root.Name() != "root" {
		t.Errorf("Name() = %q", root.Name())
	}
	if v, ok := root.Attr("version"); !ok || v != "2.0" {
		t.Errorf("Attr(version) = %q, %v", v, ok)
	}
	if _, ok := root.Attr("absent"); ok {
		t.Error("absent attribute reported present")
	}

	children := root.Children()
	if len(children) != 3 {
		t.Fatalf("len(Children()) = %d, want 3", len(children))
	}
	if children[0].Name() != "first" || children[1].Name() != "second" {
		t.Errorf("children out of document order: %v, %v", children[0].Name(), children[1].Name())
	}

	first := root.FirstChild("first")
	if first == nil {
		t.Fatal("FirstChild(first) = nil")
	}
	if kind, _ := first.Attr("kind"); kind != "a" {
		t.Errorf("FirstChild should return the first match, got kind %q", kind)
	}
	if root.FirstChild("missing") != nil {
		t.Error("FirstChild on absent tag should be nil")
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(strings.NewReader("not xml <<<")); err == nil {
		t.Error("expected error for malformed document")
	}
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modelDescription.xml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	root, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if root.Name() != "root" {
		t.Errorf("Name() = %q", root.Name())
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "absent.xml")); err == nil {
		t.Error("expected error for absent file")
	}
}
