package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgtree"
)

// Format is a file encoding understood by Decode.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported file type %q (want .json, .yaml, .yml or .toml)", filepath.Ext(path))
}

// Document is the decoded content of an organization file: either a nested
// tree or a flat list of positions.
type Document struct {
	Root      *orgtree.Node
	Positions []Position
}

type flatDocument struct {
	Positions []Position `json:"positions" yaml:"positions" toml:"positions"`
}

// Decode parses data in the given format. A top-level "positions" list is
// read as flat records; anything else is read as a nested root node.
func Decode(data []byte, f Format) (Document, error) {
	unmarshal, err := unmarshaler(f)
	if err != nil {
		return Document{}, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, nil
	}

	var flat flatDocument
	if err := unmarshal(data, &flat); err == nil && len(flat.Positions) > 0 {
		return Document{Positions: flat.Positions}, nil
	}

	var root orgtree.Node
	if err := unmarshal(data, &root); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", f)
	}
	if root.ID == "" {
		return Document{}, errors.New(errors.ErrCodeInvalidFormat, "%s document has neither a root id nor a positions list", f)
	}
	return Document{Root: &root}, nil
}

func unmarshaler(f Format) (func([]byte, any) error, error) {
	switch f {
	case FormatJSON:
		return json.Unmarshal, nil
	case FormatYAML:
		return yaml.Unmarshal, nil
	case FormatTOML:
		return toml.Unmarshal, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
}

// Resolve turns a decoded document into a Result for key.
func (d Document) Resolve(key Key) (Result, error) {
	if d.Root == nil {
		return Build(filter(d.Positions, key), key.Focus)
	}
	if key.Focus == "" {
		return Result{Root: d.Root}, nil
	}
	if n := findNode(d.Root, key.Focus, 0); n != nil {
		return Result{Root: n}, nil
	}
	return Result{}, errors.New(errors.ErrCodeNotFound, "focus position %q not found", key.Focus)
}

func findNode(n *orgtree.Node, id string, depth int) *orgtree.Node {
	if n == nil || depth > orgtree.MaxDepth {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := findNode(c, id, depth+1); found != nil {
			return found
		}
	}
	return nil
}

// FileSource reads an organization from a local file.
type FileSource struct {
	Path string
}

// NewFileSource returns a source reading path. The format follows the
// extension.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) Fetch(ctx context.Context, key Key) (Result, error) {
	f, err := FormatFromPath(s.Path)
	if err != nil {
		return Result{}, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, errors.Wrap(errors.ErrCodeNotFound, err, "read %s", s.Path)
		}
		return Result{}, fmt.Errorf("read %s: %w", s.Path, err)
	}
	doc, err := Decode(data, f)
	if err != nil {
		return Result{}, err
	}
	return doc.Resolve(key)
}

// StaticSource serves a fixed document. It backs tests and charts posted to
// the HTTP server.
type StaticSource struct {
	Doc Document
}

func NewStaticSource(root *orgtree.Node) *StaticSource {
	return &StaticSource{Doc: Document{Root: root}}
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Fetch(ctx context.Context, key Key) (Result, error) {
	return s.Doc.Resolve(key)
}

var (
	_ Source = (*FileSource)(nil)
	_ Source = (*StaticSource)(nil)
)
