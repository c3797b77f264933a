// Package fs is the filesystem-backed body store for objects whose
// content lives locally rather than in the blob store, laid out under
// <db-path>/P3WSDB/<owner>/<wsname>/<path>/<name>.
package fs

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wsobjects/wsd/pkg/wsdomain"
)

const rootDir = "P3WSDB"

// Store roots every object body under BasePath/P3WSDB.
type Store struct {
	basePath string
	dirMode  os.FileMode
	fileMode os.FileMode
}

// Config configures a Store.
type Config struct {
	BasePath string
	DirMode  os.FileMode // default 0755
	FileMode os.FileMode // default 0644
}

// New creates the store root (BasePath/P3WSDB) if absent and returns a Store.
func New(cfg Config) (*Store, error) {
	if cfg.BasePath == "" {
		return nil, wsdomain.InvalidArgument("base path is required")
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = 0755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0644
	}

	root := filepath.Join(cfg.BasePath, rootDir)
	if err := os.MkdirAll(root, cfg.DirMode); err != nil {
		return nil, wsdomain.NewError(wsdomain.ErrIO, "create store root: "+err.Error())
	}

	return &Store{basePath: root, dirMode: cfg.DirMode, fileMode: cfg.FileMode}, nil
}

// ObjectPath returns the filesystem path for an object body.
func (s *Store) ObjectPath(owner, wsname, path, name string) string {
	parts := []string{s.basePath, owner, wsname}
	if path != "" {
		parts = append(parts, strings.Split(path, "/")...)
	}
	parts = append(parts, name)
	return filepath.Join(parts...)
}

// EnsureWorkspaceRoot creates the workspace's root directory, idempotently.
func (s *Store) EnsureWorkspaceRoot(owner, wsname string) error {
	dir := filepath.Join(s.basePath, owner, wsname)
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return wsdomain.NewError(wsdomain.ErrIO, "create workspace root: "+err.Error())
	}
	return nil
}

// EnsureFolder creates a folder-kind object's backing directory.
func (s *Store) EnsureFolder(owner, wsname, path, name string) error {
	dir := s.ObjectPath(owner, wsname, path, name)
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return wsdomain.NewError(wsdomain.ErrIO, "create folder: "+err.Error())
	}
	return nil
}

// WriteObject writes data to an object's body, atomically: write to a
// temp file in the same directory, then rename over the target.
func (s *Store) WriteObject(owner, wsname, path, name string, data []byte) error {
	target := s.ObjectPath(owner, wsname, path, name)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return wsdomain.NewError(wsdomain.ErrIO, "create object parent dir: "+err.Error())
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return wsdomain.NewError(wsdomain.ErrIO, "create temp file: "+err.Error())
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return wsdomain.NewError(wsdomain.ErrIO, "write temp file: "+err.Error())
	}
	if err := tmp.Close(); err != nil {
		return wsdomain.NewError(wsdomain.ErrIO, "close temp file: "+err.Error())
	}
	if err := os.Chmod(tmpName, s.fileMode); err != nil {
		return wsdomain.NewError(wsdomain.ErrIO, "chmod temp file: "+err.Error())
	}
	if err := os.Rename(tmpName, target); err != nil {
		return wsdomain.NewError(wsdomain.ErrIO, "rename into place: "+err.Error())
	}
	return nil
}

// ReadObject reads an object's entire body.
func (s *Store) ReadObject(owner, wsname, path, name string) ([]byte, error) {
	data, err := os.ReadFile(s.ObjectPath(owner, wsname, path, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wsdomain.NotFound(path + "/" + name)
		}
		return nil, wsdomain.NewError(wsdomain.ErrIO, "read object: "+err.Error())
	}
	return data, nil
}

// Open opens an object's body for streaming.
func (s *Store) Open(owner, wsname, path, name string) (io.ReadCloser, error) {
	f, err := os.Open(s.ObjectPath(owner, wsname, path, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wsdomain.NotFound(path + "/" + name)
		}
		return nil, wsdomain.NewError(wsdomain.ErrIO, "open object: "+err.Error())
	}
	return f, nil
}

// Remove deletes an object's body. Missing files are not an error: the
// database is the source of truth for deletion, per the removal-request
// being best-effort.
func (s *Store) Remove(owner, wsname, path, name string) error {
	err := os.Remove(s.ObjectPath(owner, wsname, path, name))
	if err != nil && !os.IsNotExist(err) {
		return wsdomain.NewError(wsdomain.ErrIO, "remove object body: "+err.Error())
	}
	return nil
}

// CopyObject duplicates a body from one location to another.
func (s *Store) CopyObject(srcOwner, srcWS, srcPath, srcName, dstOwner, dstWS, dstPath, dstName string) error {
	data, err := s.ReadObject(srcOwner, srcWS, srcPath, srcName)
	if err != nil {
		return err
	}
	return s.WriteObject(dstOwner, dstWS, dstPath, dstName, data)
}
