// Package archive resolves log files from directory trees that may contain
// nested archives.
//
// The resolver walks a root directory, matches filenames against glob
// patterns, and recursively opens archives (.zip, .tar, .tar.gz, .tar.bz2,
// bare .gz) up to a configured depth. Matching files are yielded as readable
// streams tagged with their extraction lineage, e.g.
// "backup.zip→daily.tar.gz→access.log".
//
// Safety invariants:
//   - recursion is bounded by MaxDepth, so archive cycles cannot loop forever
//   - every member stream is bounded by MaxFileBytes, so decompression bombs
//     cannot exhaust memory or disk
//   - members with absolute paths, ".." traversal or backslash tricks are
//     skipped and never extracted
//   - a corrupt archive or member is logged and skipped, it never aborts the
//     whole walk
package archive

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// Lineage chain separator, matching how sources are reported to users
const lineageSep = "→"

// ErrSizeLimit is returned by a Source reader when the decompressed stream
// exceeds the configured per-member byte limit
var ErrSizeLimit = errors.New("archive member exceeds decompressed size limit")

// Source is a readable log stream produced by the resolver.
// Reader is only valid inside the visit callback.
type Source struct {
	Name    string    // base filename, e.g. "access.log"
	Lineage string    // extraction chain, e.g. "backup.zip→access.log"
	Reader  io.Reader // file contents; size-bounded when decompressed from an archive
}

// archiveKind identifies the supported archive container formats
type archiveKind int

const (
	kindNone archiveKind = iota
	kindZip
	kindTar
	kindTarGz
	kindTarBz2
	kindGz // bare gzip, not a tarball
)

// detectKind classifies a filename by its archive extension.
// Compound extensions are checked before their suffixes (.tar.gz before .gz).
func detectKind(name string) archiveKind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return kindZip
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return kindTarGz
	case strings.HasSuffix(lower, ".tar.bz2"):
		return kindTarBz2
	case strings.HasSuffix(lower, ".tar"):
		return kindTar
	case strings.HasSuffix(lower, ".gz"):
		return kindGz
	default:
		return kindNone
	}
}

// isArchive reports whether the filename names a supported archive format
func isArchive(name string) bool {
	return detectKind(name) != kindNone
}

// matchesPatterns checks the filename against the configured glob patterns,
// case-insensitively
func matchesPatterns(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range patterns {
		if ok, err := filepath.Match(strings.ToLower(pattern), lower); err == nil && ok {
			return true
		}
	}
	return false
}

// isSafePath rejects archive member names that could escape the extraction
// root: absolute paths, ".." traversal and backslash separators
func isSafePath(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || filepath.IsAbs(name) {
		return false
	}
	if strings.Contains(name, "\\") {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

// boundedReader caps the number of bytes readable from the underlying
// stream. Exceeding the cap yields ErrSizeLimit rather than silent
// truncation, so decompression bombs surface as errors.
type boundedReader struct {
	r         io.Reader
	remaining int64
}

func newBoundedReader(r io.Reader, limit int64) *boundedReader {
	return &boundedReader{r: r, remaining: limit}
}

func (b *boundedReader) Read(p []byte) (int, error) {
	if b.remaining <= 0 {
		// Probe for EOF: a stream ending exactly at the limit is fine,
		// one more byte is not
		var probe [1]byte
		n, err := b.r.Read(probe[:])
		if n == 0 && err == io.EOF {
			return 0, io.EOF
		}
		return 0, ErrSizeLimit
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.r.Read(p)
	b.remaining -= int64(n)
	return n, err
}
