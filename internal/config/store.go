package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LoadFrom reads and strictly decodes the document at path.
//
// JSON is the default; .yaml/.yml paths are decoded as YAML. Structural or
// coercion failures are returned as *ParseError; I/O failures are returned
// unwrapped.
func LoadFrom(path string) (*Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, b)
}

// Parse decodes data as if it had been read from path.
func Parse(path string, data []byte) (*Record, error) {
	jb, err := coerceToJSONBytes(path, data)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	var rec Record
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			err = errors.New("trailing data")
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	return &rec, nil
}

// Encode serializes r in the format implied by path.
func (r *Record) Encode(path string) ([]byte, error) {
	j, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return nil, err
	}
	if isYAMLPath(path) {
		return jsonToYAML(j)
	}
	return append(j, '\n'), nil
}

// SaveTo atomically replaces path with the serialized record.
//
// The document is written to <path>.tmp in the same directory, synced, then
// renamed over path; readers see either the old or the new content. If the
// write fails the temp file may be left behind.
func (r *Record) SaveTo(path string) error {
	data, err := r.Encode(path)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeAtomic(path, data, renameFile)
}

var renameFile = os.Rename

func writeAtomic(path string, data []byte, rename func(oldpath, newpath string) error) error {
	tmp := path + ".tmp"
	perm := os.FileMode(0o600)
	if st, err := os.Stat(path); err == nil {
		perm = st.Mode().Perm()
	}

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := rename(tmp, path); err != nil {
		return err
	}
	syncDir(filepath.Dir(path))
	return nil
}

// syncDir makes the rename durable where the platform supports it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
