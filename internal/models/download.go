package models

import (
	"archive/zip"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// progressStep is how many bytes go by between download progress lines.
const progressStep = 64 << 20

// httpStatusError is a non-2xx response. Client errors are permanent;
// everything else is worth retrying.
type httpStatusError struct {
	status int
	url    string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.status, e.url)
}

func (e *httpStatusError) permanent() bool {
	return e.status >= 400 && e.status < 500
}

// fetch downloads url to dest atomically, retrying transient failures
// with Fibonacci backoff.
func (p *Provider) fetch(ctx context.Context, url, dest string) error {
	attempt := 0
	backoff := retry.WithMaxRetries(4, retry.NewFibonacci(time.Second))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 {
			p.log.Info("retrying download", "url", url, "attempt", attempt)
		}
		err := p.fetchOnce(ctx, url, dest)
		if err == nil {
			return nil
		}
		if statusErr, ok := err.(*httpStatusError); ok && statusErr.permanent() {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		return retry.RetryableError(err)
	})
}

func (p *Provider) fetchOnce(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &httpStatusError{status: resp.StatusCode, url: url}
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	pw := &progressWriter{log: p.log, name: filepath.Base(dest), total: resp.ContentLength}
	if _, err := io.Copy(io.MultiWriter(f, pw), resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// progressWriter logs how far a download has come at progressStep
// intervals.
type progressWriter struct {
	log   *slog.Logger
	name  string
	total int64
	done  int64
	last  int64
}

func (w *progressWriter) Write(b []byte) (int, error) {
	w.done += int64(len(b))
	if w.done-w.last >= progressStep {
		w.last = w.done
		if w.total > 0 {
			w.log.Info("downloading", "file", w.name, "done_mb", w.done>>20, "total_mb", w.total>>20)
		} else {
			w.log.Info("downloading", "file", w.name, "done_mb", w.done>>20)
		}
	}
	return len(b), nil
}

// download fetches the model archive if needed and extracts the vector
// file to filePath.
func (p *Provider) download(ctx context.Context, entry catalogEntry, filePath string) error {
	archivePath := filepath.Join(p.cacheDir, path.Base(entry.URL))
	if _, err := os.Stat(archivePath); err != nil {
		url := entry.URL
		if p.mirror != "" {
			url = strings.TrimSuffix(p.mirror, "/") + "/" + path.Base(entry.URL)
		}
		p.log.Info("downloading model", "model", entry.Name, "url", url, "size", entry.Size)
		if err := p.fetch(ctx, url, archivePath); err != nil {
			return err
		}
	}

	p.log.Info("extracting", "archive", path.Base(entry.URL), "file", filepath.Base(filePath))
	switch entry.Kind {
	case archiveGzip:
		return extractGzip(archivePath, filePath)
	case archiveZip:
		return extractZipMember(archivePath, entry.Member, filePath)
	}
	return fmt.Errorf("models: unknown archive kind %d", entry.Kind)
}

// extractGzip decompresses src into dest.
func extractGzip(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("models: open gzip archive: %w", err)
	}
	defer zr.Close()
	return writeAtomic(dest, zr)
}

// extractZipMember pulls one member file out of a zip archive.
func extractZipMember(src, member, dest string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("models: open zip archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != member && path.Base(f.Name) != member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("models: open archive member %s: %w", member, err)
		}
		defer rc.Close()
		return writeAtomic(dest, rc)
	}
	return fmt.Errorf("models: %s not found in %s", member, filepath.Base(src))
}

func writeAtomic(dest string, r io.Reader) error {
	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}
