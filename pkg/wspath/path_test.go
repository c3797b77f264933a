package wspath

import "testing"

func TestParseRoot(t *testing.T) {
	p := Parse("/")
	if !p.Empty {
		t.Fatalf("expected Empty for bare root, got %+v", p)
	}
	if p.Owner != "" || p.Workspace != "" || p.FullPath() != "" {
		t.Fatalf("expected all-empty fields, got %+v", p)
	}
	if !p.IsRoot() {
		t.Fatalf("expected IsRoot true")
	}
}

func TestParseOwnerOnly(t *testing.T) {
	p := Parse("/alice")
	if p.Owner != "alice" {
		t.Fatalf("owner = %q, want alice", p.Owner)
	}
	if p.Workspace != "" || p.FullPath() != "" {
		t.Fatalf("expected no workspace/path, got %+v", p)
	}
	if !p.IsOwnerOnly() {
		t.Fatalf("expected IsOwnerOnly true")
	}
}

func TestParseWorkspaceRoot(t *testing.T) {
	p := Parse("/alice/docs")
	if p.Owner != "alice" || p.Workspace != "docs" {
		t.Fatalf("got owner=%q ws=%q", p.Owner, p.Workspace)
	}
	if p.FullPath() != "" {
		t.Fatalf("expected empty path at workspace root, got %q", p.FullPath())
	}
	if !p.IsWorkspaceRoot() {
		t.Fatalf("expected IsWorkspaceRoot true")
	}
}

func TestParseDeepPath(t *testing.T) {
	p := Parse("/alice/docs/a/b/report.txt")
	if p.Owner != "alice" || p.Workspace != "docs" {
		t.Fatalf("got owner=%q ws=%q", p.Owner, p.Workspace)
	}
	if p.Path != "a/b" || p.Name != "report.txt" {
		t.Fatalf("got path=%q name=%q", p.Path, p.Name)
	}
	if p.FullPath() != "a/b/report.txt" {
		t.Fatalf("FullPath = %q", p.FullPath())
	}
}

func TestParseCollapsesDuplicateSlashes(t *testing.T) {
	p := Parse("//alice///docs//a//b///report.txt")
	if p.Owner != "alice" || p.Workspace != "docs" {
		t.Fatalf("got owner=%q ws=%q", p.Owner, p.Workspace)
	}
	if p.Path != "a/b" || p.Name != "report.txt" {
		t.Fatalf("got path=%q name=%q", p.Path, p.Name)
	}
}

func TestParseTrailingSlash(t *testing.T) {
	p := Parse("/alice/docs/a/b/")
	if p.Path != "a" || p.Name != "b" {
		t.Fatalf("got path=%q name=%q", p.Path, p.Name)
	}
}

func TestParseSingleLevelObject(t *testing.T) {
	p := Parse("/alice/docs/report.txt")
	if p.Path != "" || p.Name != "report.txt" {
		t.Fatalf("got path=%q name=%q", p.Path, p.Name)
	}
}

func TestHasValidName(t *testing.T) {
	cases := map[string]bool{
		"":            false,
		"report.txt":  true,
		"a/b":         false,
		".hidden":     true,
		"name with sp": true,
	}
	for name, want := range cases {
		if got := HasValidName(name); got != want {
			t.Errorf("HasValidName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParentPath(t *testing.T) {
	p := Parse("/alice/docs/a/b/report.txt")
	parent := p.ParentPath()
	if parent.Path != "a" || parent.Name != "b" {
		t.Fatalf("parent = path=%q name=%q", parent.Path, parent.Name)
	}

	wsRootChild := Parse("/alice/docs/report.txt")
	grandparent := wsRootChild.ParentPath()
	if grandparent.Path != "" || grandparent.Name != "" {
		t.Fatalf("expected workspace root parent, got path=%q name=%q", grandparent.Path, grandparent.Name)
	}
}

func TestChildRoundTrip(t *testing.T) {
	parent := Parse("/alice/docs/a/b")
	child := parent.Child("report.txt")
	if child.Path != "a/b" || child.Name != "report.txt" {
		t.Fatalf("child = path=%q name=%q", child.Path, child.Name)
	}
	if child.ParentPath().FullPath() != parent.FullPath() {
		t.Fatalf("ParentPath round trip mismatch: %q vs %q", child.ParentPath().FullPath(), parent.FullPath())
	}
}

func TestStringRenders(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/alice", "/alice"},
		{"/alice/docs", "/alice/docs"},
		{"/alice/docs/a/b/report.txt", "/alice/docs/a/b/report.txt"},
	}
	for _, c := range cases {
		got := Parse(c.path).String()
		if got != c.want {
			t.Errorf("String() for %q = %q, want %q", c.path, got, c.want)
		}
	}
}

func TestReplacePathPrefix(t *testing.T) {
	cases := []struct {
		p, from, to, want string
	}{
		{"a/b/c", "a/b", "x/y", "x/y/c"},
		{"a/b", "a/b", "x/y", "x/y"},
		{"a/b/c", "", "x", "x/a/b/c"},
		{"a/b/c", "z", "x", "a/b/c"},
	}
	for _, c := range cases {
		got := ReplacePathPrefix(c.p, c.from, c.to)
		if got != c.want {
			t.Errorf("ReplacePathPrefix(%q,%q,%q) = %q, want %q", c.p, c.from, c.to, got, c.want)
		}
	}
}
