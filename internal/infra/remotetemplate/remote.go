// Package remotetemplate fetches a project template archive over HTTP and
// unpacks it into a temporary directory.
package remotetemplate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/v-gjy/redwood/internal/domain"
	"github.com/v-gjy/redwood/internal/infra/httpclient"
	"github.com/v-gjy/redwood/internal/ports"
)

const (
	maxArchiveBytes   = 200 << 20 // 200MB
	maxExtractedBytes = 1 << 30   // 1GB, across all entries
)

type archiveKind int

const (
	archiveZip archiveKind = iota
	archiveTarGz
)

type getter interface {
	Get(ctx context.Context, url string) (httpclient.ResponseData, error)
}

// Source downloads a .zip or .tar.gz template archive.
type Source struct {
	URL    string
	http   getter
	tmpDir string
	logger *slog.Logger

	maxExtracted int64
}

type Option func(*Source)

// WithGetter replaces the HTTP executor (useful for tests).
func WithGetter(g getter) Option {
	return func(s *Source) { s.http = g }
}

// WithTempDir sets the parent directory for the unpacked archive.
func WithTempDir(dir string) Option {
	return func(s *Source) { s.tmpDir = dir }
}

// WithMaxExtractedBytes caps the total size of unpacked entries.
func WithMaxExtractedBytes(n int64) Option {
	return func(s *Source) {
		if n > 0 {
			s.maxExtracted = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(rawURL string, opts ...Option) *Source {
	s := &Source{
		URL: rawURL,
		http: httpclient.NewExecutor(
			httpclient.WithClient(httpclient.New(httpclient.DownloadConfig())),
			httpclient.WithTimeout(httpclient.DownloadConfig().Timeout),
			httpclient.WithMaxBodyBytes(maxArchiveBytes),
		),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxExtracted: maxExtractedBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.TemplateSource = (*Source)(nil)

// IsRemote reports whether loc looks like an http(s) URL.
func IsRemote(loc string) bool {
	u, err := url.Parse(strings.TrimSpace(loc))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (s *Source) Open(ctx context.Context) (fs.FS, func() error, error) {
	noop := func() error { return nil }

	kind, err := detectKind(s.URL)
	if err != nil {
		return nil, noop, &domain.OpError{Op: "remotetemplate.open", Kind: domain.KindInvalidConfig, Err: err}
	}

	s.logger.Debug("template.download", "url", s.URL)
	res, err := s.http.Get(ctx, s.URL)
	if err != nil {
		return nil, noop, &domain.OpError{Op: "remotetemplate.download", Kind: domain.KindExecution, Err: err}
	}
	if res.Truncated {
		return nil, noop, &domain.OpError{
			Op:   "remotetemplate.download",
			Kind: domain.KindExecution,
			Err:  fmt.Errorf("archive exceeds %d bytes", maxArchiveBytes),
		}
	}

	dir, err := os.MkdirTemp(s.tmpDir, "redwood-template-")
	if err != nil {
		return nil, noop, &domain.OpError{Op: "remotetemplate.tempdir", Kind: domain.KindExecution, Err: err}
	}
	cleanup := func() error { return os.RemoveAll(dir) }

	b := &budget{left: s.maxExtracted}
	switch kind {
	case archiveZip:
		err = extractZip(res.BodyBytes, dir, b)
	case archiveTarGz:
		err = extractTarGz(bytes.NewReader(res.BodyBytes), dir, b)
	}
	if err != nil {
		_ = cleanup()
		return nil, noop, &domain.OpError{Op: "remotetemplate.extract", Kind: domain.KindExecution, Path: dir, Err: err}
	}

	root, err := unwrapSingleDir(dir)
	if err != nil {
		_ = cleanup()
		return nil, noop, &domain.OpError{Op: "remotetemplate.extract", Kind: domain.KindExecution, Path: dir, Err: err}
	}

	s.logger.Debug("template.extracted", "dir", root, "bytes", len(res.BodyBytes))
	return os.DirFS(root), cleanup, nil
}

func detectKind(rawURL string) (archiveKind, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, err
	}
	p := strings.ToLower(u.Path)
	switch {
	case strings.HasSuffix(p, ".zip"):
		return archiveZip, nil
	case strings.HasSuffix(p, ".tar.gz"), strings.HasSuffix(p, ".tgz"):
		return archiveTarGz, nil
	default:
		return 0, fmt.Errorf("unsupported template archive %q (expected .zip, .tar.gz or .tgz)", rawURL)
	}
}

// unwrapSingleDir descends into dir while it holds exactly one directory and
// nothing else. Release archives wrap the tree in "<repo>-<tag>/".
func unwrapSingleDir(dir string) (string, error) {
	for {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return "", err
		}
		if len(entries) != 1 || !entries[0].IsDir() {
			return dir, nil
		}
		dir = filepath.Join(dir, entries[0].Name())
	}
}

func safeJoin(root, name string) (string, error) {
	dst := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, dst)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes the destination", name)
	}
	return dst, nil
}

func extractZip(data []byte, dir string, b *budget) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return err
	}
	for _, f := range zr.File {
		dst, err := safeJoin(dir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := writeZipFile(f, dst, b); err != nil {
			return err
		}
	}
	return nil
}

func writeZipFile(f *zip.File, dst string, b *budget) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return writeFile(dst, rc, f.Mode().Perm(), b)
}

func extractTarGz(r io.Reader, dir string, b *budget) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		dst, err := safeJoin(dir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(dst, tr, fs.FileMode(hdr.Mode).Perm(), b); err != nil {
				return err
			}
		default:
			// links and devices are not part of a template
		}
	}
}

// budget is the number of bytes extraction may still write.
type budget struct {
	left int64
}

var errExtractLimit = errors.New("unpacked archive exceeds the size limit")

func writeFile(dst string, r io.Reader, mode fs.FileMode, b *budget) error {
	if mode == 0 {
		mode = 0o644
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, io.LimitReader(r, b.left+1))
	if err != nil {
		_ = f.Close()
		return err
	}
	if n > b.left {
		_ = f.Close()
		return errExtractLimit
	}
	b.left -= n
	return f.Close()
}
