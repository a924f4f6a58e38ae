package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNoFilename is returned for URLs whose path does not end in a file name.
	ErrNoFilename = errors.New("URL has no filename")
	// ErrNotRegularFile is returned when the download target exists but is
	// not a regular file.
	ErrNotRegularFile = errors.New("download target is not a regular file")
)

// Source opens a stream for an image URL.
type Source interface {
	Open(ctx context.Context, u *url.URL) (io.ReadCloser, error)
}

// SourceFactory lazily creates a Source on first use.
type SourceFactory func(ctx context.Context) (Source, error)

// Result describes the outcome of Download.
type Result struct {
	Filename string
	Path     string
	// Skipped is true when the file already existed and no request was made.
	Skipped bool
	Bytes   int64
	Elapsed time.Duration
}

// Downloader fetches images by URL scheme.
type Downloader struct {
	factories map[string]SourceFactory
	sources   map[string]Source
}

// Option configures a Downloader.
type Option func(*Downloader)

// withSource registers a ready Source for a URL scheme.
func withSource(scheme string, src Source) Option {
	return func(d *Downloader) {
		d.sources[scheme] = src
	}
}

// WithSourceFactory registers a lazily created Source for a URL scheme.
func WithSourceFactory(scheme string, f SourceFactory) Option {
	return func(d *Downloader) {
		d.factories[scheme] = f
	}
}

// NewDownloader returns a Downloader that handles http and https.
// s3 support is added with WithSourceFactory(SchemeS3, ...).
func NewDownloader(opts ...Option) *Downloader {
	httpSrc := NewHTTPSource(nil)
	d := &Downloader{
		factories: map[string]SourceFactory{},
		sources: map[string]Source{
			"http":  httpSrc,
			"https": httpSrc,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// FilenameFromURL returns the last element of the URL path. Paths ending in
// "/" and dot elements have no filename.
func FilenameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return "", fmt.Errorf("%w: %s", ErrNoFilename, rawURL)
	}
	name := path.Base(u.Path)
	switch name {
	case ".", "..", "/":
		return "", fmt.Errorf("%w: %s", ErrNoFilename, rawURL)
	}
	return name, nil
}

// LocalPath returns where Download stores rawURL inside dir.
func LocalPath(rawURL, dir string) (string, error) {
	name, err := FilenameFromURL(rawURL)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Download stores the image at rawURL in dir, creating dir when missing.
// If the target already exists as a regular file nothing is fetched; any
// other file type at the target is an error.
func (d *Downloader) Download(ctx context.Context, rawURL, dir string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	name, err := FilenameFromURL(rawURL)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory %s: %w", dir, err)
	}

	result := &Result{Filename: name, Path: filepath.Join(dir, name)}
	if info, err := os.Stat(result.Path); err == nil {
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s", ErrNotRegularFile, result.Path)
		}
		result.Skipped = true
		result.Bytes = info.Size()
		return result, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat %s: %w", result.Path, err)
	}

	src, err := d.source(ctx, u.Scheme)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := src.Open(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer func() { _ = body.Close() }()

	n, err := writeAtomic(result.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	result.Bytes = n
	result.Elapsed = time.Since(start)
	return result, nil
}

func (d *Downloader) source(ctx context.Context, scheme string) (Source, error) {
	if src, ok := d.sources[scheme]; ok {
		return src, nil
	}
	f, ok := d.factories[scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported URL scheme %q", scheme)
	}
	src, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s source: %w", scheme, err)
	}
	d.sources[scheme] = src
	return src, nil
}

// writeAtomic streams r into a temporary file next to dst and renames it
// to dst after a complete copy.
func writeAtomic(dst string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	n, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		cleanup()
		return n, fmt.Errorf("failed to write %s: %w", dst, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return n, fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return n, fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		cleanup()
		return n, fmt.Errorf("failed to move download into place: %w", err)
	}
	return n, nil
}
