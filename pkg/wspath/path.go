// Package wspath parses and decomposes POSIX-like workspace path strings.
//
// A workspace path has the form "/", "/owner", "/owner/wsname", or
// "/owner/wsname/a/b/.../name". Arbitrary runs of "/" collapse to one.
// Parsing never touches the filesystem or a database: it is pure string
// decomposition, with workspace/object resolution left to the metadata
// repository.
package wspath

import "strings"

type parseState int

const (
	stateStart parseState = iota
	stateOwnerStart
	stateOwner
	stateWSStart
	stateWS
	statePathStart
	statePath
)

// WSPath is the decomposed form of a workspace path string.
type WSPath struct {
	Owner     string // user identifier owning the workspace
	Workspace string // workspace name
	Path      string // canonical folder path containing Name; "" for workspace root
	Name      string // last path segment; "" when the request targets a folder/workspace itself
	Empty     bool   // true iff no segment was parsed at all (bare "/")
}

// Parse decomposes a workspace path string into its constituent parts.
// It is a small state machine whose states are start, owner-start, owner,
// wsname-start, wsname, path-start, and path: any non-slash seen in a
// "*-start" state is taken as the first character of that field.
func Parse(s string) WSPath {
	state := stateStart
	var owner, ws, rest strings.Builder
	empty := true

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateStart:
			if c == '/' {
				continue
			}
			state = stateOwnerStart
			i--
		case stateOwnerStart:
			if c == '/' {
				continue
			}
			empty = false
			state = stateOwner
			owner.WriteByte(c)
		case stateOwner:
			if c == '/' {
				state = stateWSStart
				continue
			}
			owner.WriteByte(c)
		case stateWSStart:
			if c == '/' {
				continue
			}
			state = stateWS
			ws.WriteByte(c)
		case stateWS:
			if c == '/' {
				state = statePathStart
				continue
			}
			ws.WriteByte(c)
		case statePathStart:
			if c == '/' {
				continue
			}
			state = statePath
			rest.WriteByte(c)
		case statePath:
			if c == '/' {
				rest.WriteByte('/')
				state = statePathStart
				continue
			}
			rest.WriteByte(c)
		}
	}

	path, name := splitLast(rest.String())
	return WSPath{
		Owner:     owner.String(),
		Workspace: ws.String(),
		Path:      path,
		Name:      name,
		Empty:     empty,
	}
}

// splitLast splits a collapsed, slash-joined segment blob into its
// preceding path and its last segment.
func splitLast(s string) (path string, name string) {
	s = strings.Trim(s, "/")
	if s == "" {
		return "", ""
	}
	idx := strings.LastIndexByte(s, '/')
	if idx < 0 {
		return "", s
	}
	return s[:idx], s[idx+1:]
}

// HasValidName reports whether name is usable as an object or workspace
// name: non-empty and free of path separators.
func HasValidName(name string) bool {
	return name != "" && !strings.ContainsRune(name, '/')
}

// FullPath returns the complete slash-joined path this WSPath addresses,
// i.e. the value that Path would carry on any object stored directly
// beneath it. Empty when this addresses the workspace root.
func (p WSPath) FullPath() string {
	switch {
	case p.Name == "":
		return p.Path
	case p.Path == "":
		return p.Name
	default:
		return p.Path + "/" + p.Name
	}
}

// IsRoot reports whether this WSPath addresses "/" itself (no owner parsed).
func (p WSPath) IsRoot() bool {
	return p.Owner == ""
}

// IsOwnerOnly reports whether this WSPath names an owner but no workspace,
// e.g. "/alice".
func (p WSPath) IsOwnerOnly() bool {
	return p.Owner != "" && p.Workspace == ""
}

// IsWorkspaceRoot reports whether this WSPath addresses a workspace itself
// with no object part, e.g. "/alice/docs".
func (p WSPath) IsWorkspaceRoot() bool {
	return p.Owner != "" && p.Workspace != "" && p.Path == "" && p.Name == ""
}

// ParentPath returns the WSPath of the parent of the object this WSPath
// addresses. The root is its own parent: if Path is already empty, the
// returned Name is also empty.
func (p WSPath) ParentPath() WSPath {
	parent := p
	if p.Path == "" {
		parent.Name = ""
		return parent
	}
	path, name := splitLast(p.Path)
	parent.Path = path
	parent.Name = name
	return parent
}

// Child returns the WSPath of a named child of the object this WSPath
// addresses, i.e. this path's FullPath becomes the child's Path.
func (p WSPath) Child(name string) WSPath {
	child := p
	child.Path = p.FullPath()
	child.Name = name
	return child
}

// String renders the canonical "/owner/wsname/path/name" form.
func (p WSPath) String() string {
	var b strings.Builder
	b.WriteByte('/')
	b.WriteString(p.Owner)
	if p.Workspace == "" {
		return b.String()
	}
	b.WriteByte('/')
	b.WriteString(p.Workspace)
	full := p.FullPath()
	if full == "" {
		return b.String()
	}
	b.WriteByte('/')
	b.WriteString(full)
	return b.String()
}

// ReplacePathPrefix textually replaces a full-path prefix of p with to,
// used by recursive copy to rewrite descendant paths under a new parent.
func ReplacePathPrefix(p, from, to string) string {
	if p == from {
		return to
	}
	if from == "" {
		if to == "" {
			return p
		}
		return to + "/" + p
	}
	if strings.HasPrefix(p, from+"/") {
		if to == "" {
			return p[len(from)+1:]
		}
		return to + p[len(from):]
	}
	return p
}
