package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testModule = `<document xmlns="http://cnx.rice.edu/cnxml">
	<title>Test Module</title>
	<content><para>hello</para></content>
</document>`

const testCollection = `<collection xmlns="http://cnx.rice.edu/collxml" xmlns:md="http://cnx.rice.edu/mdml">
	<metadata><md:title>Test Book</md:title></metadata>
	<content>
		<subcollection>
			<md:title>Chapter One</md:title>
			<content><module document="m100"/><module document="m200"/></content>
		</subcollection>
	</content>
</collection>`

func writeBundle(t *testing.T) string {
	t.Helper()
	base := t.TempDir()

	modDir := filepath.Join(base, "modules", "m100")
	if err := os.MkdirAll(modDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(modDir, "index.cnxml"), []byte(testModule), 0o644); err != nil {
		t.Fatal(err)
	}

	colDir := filepath.Join(base, "collections")
	if err := os.MkdirAll(colDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(colDir, "book.collection.xml"), []byte(testCollection), 0o644); err != nil {
		t.Fatal(err)
	}
	return base
}

func TestLoad(t *testing.T) {
	lib := New(writeBundle(t))

	doc, err := lib.Load("m100")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Len() < 3 {
		t.Errorf("expected at least 3 elements, got %d", doc.Len())
	}
}

func TestLoadNotFound(t *testing.T) {
	lib := New(writeBundle(t))

	_, err := lib.Load("m999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadRejectsPathTraversal(t *testing.T) {
	lib := New(writeBundle(t))

	for _, id := range []string{"", "../etc", "a/b", `a\b`, "m100/.."} {
		if _, err := lib.Load(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load(%q): expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestLoadMalformedXML(t *testing.T) {
	base := writeBundle(t)
	badDir := filepath.Join(base, "modules", "m300")
	if err := os.MkdirAll(badDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(badDir, "index.cnxml"), []byte("<doc><unclosed>"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := New(base).Load("m300")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("malformed XML must not be reported as not-found")
	}
}

func TestStructureAndModuleIDs(t *testing.T) {
	lib := New(writeBundle(t))

	s, err := lib.Structure()
	if err != nil {
		t.Fatalf("Structure: %v", err)
	}
	if s.Title != "Test Book" {
		t.Errorf("title = %q", s.Title)
	}

	ids, err := lib.ModuleIDs()
	if err != nil {
		t.Fatalf("ModuleIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "m100" || ids[1] != "m200" {
		t.Errorf("ids = %v", ids)
	}
}

func TestStructureMissingCollection(t *testing.T) {
	lib := New(t.TempDir())

	if _, err := lib.Structure(); err == nil {
		t.Fatal("expected an error for a bundle without collections")
	}
}
