package diff

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// HeaderPrefix starts every per-file section of a git unified diff.
const HeaderPrefix = "diff --git "

// Document is a unified diff split into per-file segments.
type Document struct {
	Files []FileDiff
}

// FileDiff is one file's segment. Lines keep their line terminators so the
// segments concatenate back to the original text. A segment with an empty
// Path holds any text that came before the first header.
type FileDiff struct {
	Lines []string
	Path  string
}

// IsPreamble reports whether f holds text from before the first file header.
func (f FileDiff) IsPreamble() bool {
	return f.Path == "" && (len(f.Lines) == 0 || !strings.HasPrefix(f.Lines[0], HeaderPrefix))
}

// Header returns the segment's "diff --git" line, or "" for a preamble.
func (f FileDiff) Header() string {
	if f.IsPreamble() || len(f.Lines) == 0 {
		return ""
	}
	return f.Lines[0]
}

// String returns the segment text exactly as it appeared in the diff.
func (f FileDiff) String() string {
	return strings.Join(f.Lines, "")
}

// String reconstructs the diff text.
func (d Document) String() string {
	var b strings.Builder
	for _, f := range d.Files {
		for _, l := range f.Lines {
			b.WriteString(l)
		}
	}
	return b.String()
}

// Paths returns the path of every file segment in order.
func (d Document) Paths() []string {
	var paths []string
	for _, f := range d.Files {
		if !f.IsPreamble() {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

// Parse splits text into file segments at each "diff --git" line.
func Parse(text string) Document {
	var doc Document
	var current *FileDiff

	for _, line := range splitLines(text) {
		if strings.HasPrefix(line, HeaderPrefix) {
			doc.Files = append(doc.Files, FileDiff{Path: pathFromHeader(line)})
			current = &doc.Files[len(doc.Files)-1]
		} else if current == nil {
			doc.Files = append(doc.Files, FileDiff{})
			current = &doc.Files[len(doc.Files)-1]
		}
		current.Lines = append(current.Lines, line)
	}
	return doc
}

// splitLines splits after each "\n", keeping the terminator on every line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// pathFromHeader returns the destination path of "diff --git a/x b/x".
func pathFromHeader(header string) string {
	header = strings.TrimRight(header, "\r\n")
	fields := strings.Fields(header)
	if len(fields) < 4 {
		return strings.TrimSpace(strings.TrimPrefix(header, HeaderPrefix))
	}
	if len(fields) > 4 {
		// Unquoted paths containing spaces.
		if i := strings.LastIndex(header, " b/"); i >= 0 {
			return header[i+len(" b/"):]
		}
	}
	return strings.TrimPrefix(fields[3], "b/")
}

// Matches reports whether p passes the include patterns. An empty pattern
// list passes everything. Each glob is tried against the full path and then
// against the base name, so "*.go" matches "cmd/root.go". A trailing "/"
// matches the whole directory, so "cmd/" is the same as "cmd/**".
func Matches(p string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	base := path.Base(p)
	for _, pattern := range patterns {
		if strings.HasSuffix(pattern, "/") {
			pattern += "**"
		}
		if ok, err := doublestar.Match(pattern, p); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}

// ValidatePatterns returns an error for the first malformed glob.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid file pattern %q", pattern)
		}
	}
	return nil
}

// Filter keeps the files matching patterns and replaces any file with more
// than maxLines lines by a placeholder that keeps its header. maxLines <= 0
// disables truncation. The preamble is kept only when patterns is empty.
func Filter(doc Document, patterns []string, maxLines int) Document {
	var out Document
	for _, f := range doc.Files {
		if f.IsPreamble() {
			if len(patterns) == 0 {
				out.Files = append(out.Files, f)
			}
			continue
		}
		if !Matches(f.Path, patterns) {
			continue
		}
		if maxLines > 0 && len(f.Lines) > maxLines {
			f = placeholder(f, maxLines)
		}
		out.Files = append(out.Files, f)
	}
	return out
}

func placeholder(f FileDiff, maxLines int) FileDiff {
	header := f.Lines[0]
	if !strings.HasSuffix(header, "\n") {
		header += "\n"
	}
	omitted := len(f.Lines) - 1
	return FileDiff{
		Path: f.Path,
		Lines: []string{
			header,
			fmt.Sprintf("... %d lines omitted (file exceeds %d lines) ...\n", omitted, maxLines),
		},
	}
}

// FilenamesOnly returns the paths of the files matching patterns.
func FilenamesOnly(doc Document, patterns []string) []string {
	return Filter(doc, patterns, 0).Paths()
}
