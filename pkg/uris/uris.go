// Package uris translates between absolute file paths and the
// text/uri-list wire format: one file:// URI per line, every line
// terminated by CRLF, '#'-prefixed lines are comments.
package uris

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

var (
	ErrNotAbsolute = errors.New("path is not absolute")
	ErrNotFileURI  = errors.New("not a file uri")
)

// ToURI converts an absolute filesystem path to a file:// URI with
// percent-encoding applied to reserved and non-ASCII bytes.
func ToURI(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("%w: %s", ErrNotAbsolute, path)
	}

	u := url.URL{Scheme: "file", Path: path}

	return u.String(), nil
}

// FromURI parses a file:// URI back into a UTF-8 filesystem path.
// URIs naming a remote host are rejected.
func FromURI(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: scheme %q", ErrNotFileURI, u.Scheme)
	}

	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("%w: host %q", ErrNotFileURI, u.Host)
	}

	if !strings.HasPrefix(u.Path, "/") {
		return "", fmt.Errorf("%w: %s", ErrNotAbsolute, raw)
	}

	return u.Path, nil
}

// Encode produces the text/uri-list body for an ordered sequence of
// absolute paths. Paths that cannot be converted are dropped.
// Every entry is line-terminated, not line-separated, so the result
// always ends with CRLF when non-empty.
func Encode(paths []string) []byte {
	var buf bytes.Buffer

	for _, path := range paths {
		uri, err := ToURI(path)
		if err != nil {
			continue
		}
		buf.WriteString(uri)
		buf.WriteString("\r\n")
	}

	return buf.Bytes()
}

// Decode parses a text/uri-list body. Comments, blank lines and
// entries that fail to parse are dropped silently; duplicates are
// preserved.
func Decode(data []byte) []string {
	lines := splitLines(data)

	paths := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		path, err := FromURI(line)
		if err != nil {
			continue
		}

		paths = append(paths, path)
	}

	return paths
}

// PlainText builds the textual fallback representation: paths joined
// by a single LF, no trailing newline.
func PlainText(paths []string) []byte {
	return []byte(strings.Join(paths, "\n"))
}

// splitLines discards CR bytes, terminates a line on LF and treats a
// trailing non-terminated fragment as a line of its own.
func splitLines(data []byte) []string {
	var lines []string
	var current []byte

	for _, ch := range data {
		switch ch {
		case '\r':
		case '\n':
			lines = append(lines, string(current))
			current = current[:0]
		default:
			current = append(current, ch)
		}
	}

	if len(current) > 0 {
		lines = append(lines, string(current))
	}

	return lines
}
