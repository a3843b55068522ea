// Package storage moves the solve log and rendered charts between the local
// working directory and a bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iafilius/SolveTrends/src/applog"
)

var logger = applog.For("storage")

// ErrNotFound is returned by Fetch when the object does not exist.
var ErrNotFound = errors.New("object not found")

// Bucket is a flat object store.
type Bucket interface {
	// Fetch copies object to localPath, replacing it.
	Fetch(ctx context.Context, object, localPath string) error
	// Publish copies localPath to object, replacing it.
	Publish(ctx context.Context, localPath, object string) error
}

// DirBucket is a Bucket backed by a local directory. Object names may not
// leave the directory.
type DirBucket struct {
	Root string
}

// Open resolves a bucket name. Plain paths and file:// URLs name a directory.
func Open(name string) (*DirBucket, error) {
	if name == "" {
		return nil, fmt.Errorf("bucket name is empty")
	}
	root := name
	if strings.Contains(name, "://") {
		u, err := url.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("invalid bucket url %q: %w", name, err)
		}
		if u.Scheme != "file" {
			return nil, fmt.Errorf("unsupported bucket scheme %q (want file://)", u.Scheme)
		}
		root = u.Path
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket dir: %w", err)
	}
	return &DirBucket{Root: root}, nil
}

func (b *DirBucket) objectPath(object string) (string, error) {
	clean := filepath.Clean("/" + filepath.ToSlash(object))
	if clean == "/" {
		return "", fmt.Errorf("invalid object name %q", object)
	}
	return filepath.Join(b.Root, filepath.FromSlash(clean)), nil
}

// Fetch copies object from the bucket directory to localPath.
func (b *DirBucket) Fetch(ctx context.Context, object, localPath string) error {
	src, err := b.objectPath(object)
	if err != nil {
		return err
	}
	if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("fetch %s: %w", object, ErrNotFound)
	}
	defer logger.TimeTrack(time.Now(), "fetch "+object)
	if err := copyFile(ctx, src, localPath); err != nil {
		return fmt.Errorf("fetch %s: %w", object, err)
	}
	logger.Debugf("fetched %s -> %s", object, localPath)
	return nil
}

// Publish copies localPath into the bucket directory as object.
func (b *DirBucket) Publish(ctx context.Context, localPath, object string) error {
	dst, err := b.objectPath(object)
	if err != nil {
		return err
	}
	defer logger.TimeTrack(time.Now(), "publish "+object)
	if err := copyFile(ctx, localPath, dst); err != nil {
		return fmt.Errorf("publish %s: %w", object, err)
	}
	logger.Debugf("published %s -> %s", localPath, object)
	return nil
}

// copyFile copies src to dst through a temporary file next to dst.
func copyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, ctxReader{ctx: ctx, r: in}); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// ctxReader stops a copy once the context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
