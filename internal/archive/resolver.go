package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"
)

// Resolver walks directory trees and yields log file streams, opening
// nested archives up to a depth limit
type Resolver struct {
	maxDepth     int
	maxFileBytes int64
	log          *zap.Logger
}

// NewResolver creates a resolver. maxDepth bounds nested archive recursion;
// maxFileBytes bounds every decompressed member stream.
func NewResolver(maxDepth int, maxFileBytes int64, log *zap.Logger) *Resolver {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	if maxFileBytes <= 0 {
		maxFileBytes = 1 << 30 // 1 GiB
	}
	return &Resolver{maxDepth: maxDepth, maxFileBytes: maxFileBytes, log: log}
}

// VisitFunc receives each resolved log stream. The Source reader is only
// valid for the duration of the call. Returning an error aborts the walk.
type VisitFunc func(Source) error

// Walk scans root for files matching the glob patterns. Plain files are
// yielded directly; archives whose names match a pattern are opened
// recursively and their matching members yielded with extraction lineage.
//
// Unreadable files and corrupt archives are logged and skipped; the walk
// only fails on a callback error, a context cancellation or an unreadable
// root.
func (r *Resolver) Walk(ctx context.Context, root string, patterns []string, visit VisitFunc) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot read root directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root is not a directory: %s", root)
	}

	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			r.log.Warn("skipping unreadable path", zap.String("path", p), zap.Error(err))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		name := d.Name()
		if !matchesPatterns(name, patterns) {
			return nil
		}

		if isArchive(name) {
			if err := r.openArchiveFile(ctx, p, detectKind(name), name, name, patterns, 0, visit); err != nil {
				return err
			}
			return nil
		}

		f, openErr := os.Open(p)
		if openErr != nil {
			r.log.Error("failed to open file", zap.String("path", p), zap.Error(openErr))
			return nil
		}
		defer f.Close()

		// The size ceiling guards decompression, not plain files already
		// sized on disk
		return visit(Source{
			Name:    name,
			Lineage: name,
			Reader:  f,
		})
	})
}

// openArchiveFile opens an on-disk archive and visits its matching members.
// The kind is carried explicitly because spooled nested archives live in
// temp files whose names no longer carry the original extension.
// Corrupt archives are logged and skipped; only callback and context errors
// propagate.
func (r *Resolver) openArchiveFile(ctx context.Context, diskPath string, kind archiveKind, name, lineage string, patterns []string, depth int, visit VisitFunc) error {
	if depth >= r.maxDepth {
		r.log.Warn("maximum archive depth reached, skipping",
			zap.String("archive", lineage),
			zap.Int("max_depth", r.maxDepth))
		return nil
	}

	r.log.Debug("processing archive", zap.String("archive", lineage), zap.Int("depth", depth))

	switch kind {
	case kindZip:
		return r.visitZip(ctx, diskPath, lineage, patterns, depth, visit)
	case kindTar, kindTarGz, kindTarBz2:
		return r.visitTar(ctx, diskPath, kind, lineage, patterns, depth, visit)
	case kindGz:
		return r.visitGzip(diskPath, name, lineage, patterns, visit)
	default:
		r.log.Warn("unsupported archive format", zap.String("archive", lineage))
		return nil
	}
}

// visitZip walks the members of a zip archive
func (r *Resolver) visitZip(ctx context.Context, diskPath, lineage string, patterns []string, depth int, visit VisitFunc) error {
	zr, err := zip.OpenReader(diskPath)
	if err != nil {
		r.log.Error("failed to open zip archive", zap.String("archive", lineage), zap.Error(err))
		return nil
	}
	defer zr.Close()

	for _, member := range zr.File {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if member.FileInfo().IsDir() {
			continue
		}
		if !isSafePath(member.Name) {
			r.log.Warn("unsafe path in archive, skipping member",
				zap.String("archive", lineage),
				zap.String("member", member.Name))
			continue
		}

		base := path.Base(member.Name)
		if !matchesPatterns(base, patterns) {
			continue
		}

		rc, openErr := member.Open()
		if openErr != nil {
			r.log.Error("failed to open zip member",
				zap.String("archive", lineage),
				zap.String("member", member.Name),
				zap.Error(openErr))
			continue
		}

		err := r.visitMember(ctx, rc, base, lineage, patterns, depth, visit)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// visitTar walks the members of a tar archive, transparently decompressing
// gzip and bzip2 tarballs
func (r *Resolver) visitTar(ctx context.Context, diskPath string, kind archiveKind, lineage string, patterns []string, depth int, visit VisitFunc) error {
	f, err := os.Open(diskPath)
	if err != nil {
		r.log.Error("failed to open tar archive", zap.String("archive", lineage), zap.Error(err))
		return nil
	}
	defer f.Close()

	var stream io.Reader = f
	switch kind {
	case kindTarGz:
		gz, gzErr := gzip.NewReader(f)
		if gzErr != nil {
			r.log.Error("failed to decompress gzip tarball", zap.String("archive", lineage), zap.Error(gzErr))
			return nil
		}
		defer gz.Close()
		stream = gz
	case kindTarBz2:
		stream = bzip2.NewReader(f)
	}

	tr := tar.NewReader(stream)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		hdr, nextErr := tr.Next()
		if nextErr == io.EOF {
			return nil
		}
		if nextErr != nil {
			r.log.Error("corrupt tar archive, stopping at bad member",
				zap.String("archive", lineage),
				zap.Error(nextErr))
			return nil
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if !isSafePath(hdr.Name) {
			r.log.Warn("unsafe path in archive, skipping member",
				zap.String("archive", lineage),
				zap.String("member", hdr.Name))
			continue
		}

		base := path.Base(hdr.Name)
		if !matchesPatterns(base, patterns) {
			continue
		}

		if err := r.visitMember(ctx, tr, base, lineage, patterns, depth, visit); err != nil {
			return err
		}
	}
}

// visitGzip handles a bare gzip file (not a tarball). The member name is the
// logical filename with the .gz suffix stripped; the disk path may be a
// spool file with an unrelated name.
func (r *Resolver) visitGzip(diskPath, name, lineage string, patterns []string, visit VisitFunc) error {
	f, err := os.Open(diskPath)
	if err != nil {
		r.log.Error("failed to open gzip file", zap.String("archive", lineage), zap.Error(err))
		return nil
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		r.log.Error("failed to decompress gzip file", zap.String("archive", lineage), zap.Error(err))
		return nil
	}
	defer gz.Close()

	inner := gzipInnerName(name)
	if !matchesPatterns(inner, patterns) {
		r.log.Debug("decompressed name does not match patterns, skipping",
			zap.String("archive", lineage),
			zap.String("member", inner))
		return nil
	}
	return visit(Source{
		Name:    inner,
		Lineage: lineage + lineageSep + inner,
		Reader:  newBoundedReader(gz, r.maxFileBytes),
	})
}

// visitMember dispatches one archive member: nested archives recurse through
// a spool file, plain members are yielded to the callback
func (r *Resolver) visitMember(ctx context.Context, member io.Reader, base, lineage string, patterns []string, depth int, visit VisitFunc) error {
	memberLineage := lineage + lineageSep + base

	if isArchive(base) {
		// Nested archive: spool to a temp file so formats that need random
		// access (zip) can be opened, then recurse one level deeper
		spoolPath, spoolErr := r.spoolToTemp(member)
		if spoolErr != nil {
			r.log.Error("failed to spool nested archive",
				zap.String("archive", memberLineage),
				zap.Error(spoolErr))
			return nil
		}
		defer os.Remove(spoolPath)

		return r.openArchiveFile(ctx, spoolPath, detectKind(base), base, memberLineage, patterns, depth+1, visit)
	}

	return visit(Source{
		Name:    base,
		Lineage: memberLineage,
		Reader:  newBoundedReader(member, r.maxFileBytes),
	})
}

// spoolToTemp copies a member stream to a temporary file, enforcing the
// per-member size limit during the copy. The caller removes the file.
func (r *Resolver) spoolToTemp(src io.Reader) (string, error) {
	tmp, err := os.CreateTemp("", "logmcp-archive-*")
	if err != nil {
		return "", fmt.Errorf("failed to create spool file: %w", err)
	}

	_, copyErr := io.Copy(tmp, newBoundedReader(src, r.maxFileBytes))
	closeErr := tmp.Close()

	if copyErr != nil {
		os.Remove(tmp.Name())
		return "", copyErr
	}
	if closeErr != nil {
		os.Remove(tmp.Name())
		return "", closeErr
	}
	return tmp.Name(), nil
}

// gzipInnerName strips the trailing .gz suffix from a gzip filename
func gzipInnerName(name string) string {
	if len(name) > 3 && (name[len(name)-3:] == ".gz" || name[len(name)-3:] == ".GZ") {
		return name[:len(name)-3]
	}
	return name
}
