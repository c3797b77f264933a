package service

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wsobjects/wsd/pkg/metadata"
	"github.com/wsobjects/wsd/pkg/wsdomain"
)

// TypeWhitelist is the set of object type names create/update_metadata
// will accept, loaded from the configured types-file. "folder" and its
// alias "directory" are always accepted; every other file-kind type name
// must appear in the whitelist.
type TypeWhitelist struct {
	names map[string]bool
}

// typesFile is the YAML shape of the types-file: a flat list of allowed
// type names.
type typesFile struct {
	Types []string `yaml:"types"`
}

// LoadTypeWhitelist reads a YAML file listing the allowed type names.
func LoadTypeWhitelist(path string) (*TypeWhitelist, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, wsdomain.NewError(wsdomain.ErrIO, "open types file: "+err.Error())
	}

	var parsed typesFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, wsdomain.NewError(wsdomain.ErrIO, "parse types file: "+err.Error())
	}

	names := make(map[string]bool, len(parsed.Types))
	for _, t := range parsed.Types {
		if t != "" {
			names[t] = true
		}
	}
	return &TypeWhitelist{names: names}, nil
}

// Canonicalize maps "directory" to "folder" and validates the result
// against the whitelist. An empty input canonicalizes to "unspecified",
// the default file-kind type when a caller doesn't name one.
func (w *TypeWhitelist) Canonicalize(t string) (string, error) {
	switch t {
	case "directory":
		t = string(metadata.TypeFolder)
	case "":
		t = "unspecified"
	}
	if t == string(metadata.TypeFolder) {
		return t, nil
	}
	if w == nil || w.names[t] {
		return t, nil
	}
	return "", wsdomain.InvalidArgument("type not in whitelist: " + t)
}

// IsFolderKind reports whether t canonicalizes to the folder type.
func IsFolderKind(t string) bool {
	return t == string(metadata.TypeFolder)
}
