// Package interchange encodes and decodes tokens, syntax trees and
// diagnostics for files and network peers.
//
// Three formats are supported:
//
//	json  tagged records, as produced by syntax.ToMap
//	yaml  the same records in YAML
//	list  nested JSON arrays such as ["BINOP", "+", ["INT", "2"], ["IDENTIFIER", "x"]]
//
// The list form carries no positions. For token streams it is the plain
// [{"type": ..., "value": ...}] record list.
package interchange

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/you-not-fish/scl/internal/syntax"
)

// Format selects an encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	List Format = "list"
)

// ErrUnknownFormat is returned for format names outside JSON, YAML and List.
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat converts a format name such as "yaml" or "YML".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "list":
		return List, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

// TokensPath returns the token file name for a source file:
// "dir/prog.scl" becomes "dir/prog_tokens.json".
func TokensPath(src string) string {
	return trimExt(src) + "_tokens.json"
}

// TreePath returns the tree file name for a source or token file:
// "prog.scl" and "prog_tokens.json" both become "prog_parse_tree.json".
func TreePath(src string) string {
	if strings.HasSuffix(src, "_tokens.json") {
		return strings.TrimSuffix(src, "_tokens.json") + "_parse_tree.json"
	}
	return trimExt(src) + "_parse_tree.json"
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// ----------------------------------------------------------------------------
// Tokens

// EncodeTokens writes toks to w.
func EncodeTokens(w io.Writer, format Format, toks []syntax.Token) error {
	records := make([]interface{}, len(toks))
	for i, t := range toks {
		m := syntax.TokenToMap(t)
		if format == List {
			delete(m, "line")
			delete(m, "col")
		}
		records[i] = m
	}
	return encode(w, format, records)
}

// DecodeTokens reads a token list written by EncodeTokens, or by any
// producer of {"type", "value"} records. filename is recorded in the
// token positions.
func DecodeTokens(r io.Reader, format Format, filename string) ([]syntax.Token, error) {
	var raw []interface{}
	if err := decode(r, format, &raw); err != nil {
		return nil, fmt.Errorf("decode tokens: %w", err)
	}
	toks := make([]syntax.Token, 0, len(raw))
	for i, v := range raw {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("decode tokens: element %d is not a record", i)
		}
		t, err := syntax.TokenFromMap(m, filename)
		if err != nil {
			return nil, fmt.Errorf("decode tokens: element %d: %w", i, err)
		}
		toks = append(toks, t)
	}
	return toks, nil
}

// ----------------------------------------------------------------------------
// Trees

// EncodeTree writes prog to w.
func EncodeTree(w io.Writer, format Format, prog *syntax.Program) error {
	if format == List {
		return encode(w, JSON, ToList(prog))
	}
	return encode(w, format, syntax.ToMap(prog))
}

// DecodeTree reads a tree written by EncodeTree.
func DecodeTree(r io.Reader, format Format) (*syntax.Program, error) {
	var n syntax.Node
	if format == List {
		var raw []interface{}
		if err := decode(r, JSON, &raw); err != nil {
			return nil, fmt.Errorf("decode tree: %w", err)
		}
		var err error
		if n, err = FromList(raw); err != nil {
			return nil, fmt.Errorf("decode tree: %w", err)
		}
	} else {
		var raw map[string]interface{}
		if err := decode(r, format, &raw); err != nil {
			return nil, fmt.Errorf("decode tree: %w", err)
		}
		var err error
		if n, err = syntax.FromMap(raw); err != nil {
			return nil, fmt.Errorf("decode tree: %w", err)
		}
	}
	prog, ok := n.(*syntax.Program)
	if !ok {
		return nil, fmt.Errorf("decode tree: root is %T, want a program", n)
	}
	return prog, nil
}

// ----------------------------------------------------------------------------
// Diagnostics

// EncodeDiagnostics writes diags to w. List is treated as JSON.
func EncodeDiagnostics(w io.Writer, format Format, diags []syntax.Diagnostic) error {
	records := make([]interface{}, len(diags))
	for i, d := range diags {
		records[i] = syntax.DiagnosticToMap(d)
	}
	if format == List {
		format = JSON
	}
	return encode(w, format, records)
}

// DecodeDiagnostics reads diagnostics written by EncodeDiagnostics.
func DecodeDiagnostics(r io.Reader, format Format) ([]syntax.Diagnostic, error) {
	if format == List {
		format = JSON
	}
	var raw []interface{}
	if err := decode(r, format, &raw); err != nil {
		return nil, fmt.Errorf("decode diagnostics: %w", err)
	}
	diags := make([]syntax.Diagnostic, 0, len(raw))
	for i, v := range raw {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("decode diagnostics: element %d is not a record", i)
		}
		d, err := syntax.DiagnosticFromMap(m)
		if err != nil {
			return nil, fmt.Errorf("decode diagnostics: element %d: %w", i, err)
		}
		diags = append(diags, d)
	}
	return diags, nil
}

// ----------------------------------------------------------------------------
// Codecs

func encode(w io.Writer, format Format, v interface{}) error {
	switch format {
	case JSON, List:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, format)
}

func decode(r io.Reader, format Format, v interface{}) error {
	switch format {
	case JSON, List:
		return json.NewDecoder(r).Decode(v)
	case YAML:
		return yaml.NewDecoder(r).Decode(v)
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, format)
}
