// Package storage is a bucketed object store on the local filesystem. Objects
// are addressed by (bucket, path) and served publicly over HTTP.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	ErrObjectExists = errors.New("object already exists")
	ErrNotFound     = errors.New("object not found")
	ErrInvalidPath  = errors.New("invalid object path")
)

var bucketRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

type UploadOptions struct {
	// Upsert overwrites an existing object instead of failing with ErrObjectExists.
	Upsert bool
}

type Store struct {
	root       string
	publicBase string
}

// New returns a store rooted at root, creating the directory if needed.
// publicBaseURL is the prefix PublicURL builds object URLs from.
func New(root, publicBaseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &Store{root: root, publicBase: strings.TrimRight(publicBaseURL, "/")}, nil
}

func (s *Store) resolve(bucket, objectPath string) (string, error) {
	if !bucketRe.MatchString(bucket) {
		return "", fmt.Errorf("%w: bucket %q", ErrInvalidPath, bucket)
	}
	clean := path.Clean("/" + objectPath)
	if clean == "/" || objectPath == "" || strings.Contains(objectPath, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, objectPath)
	}
	return filepath.Join(s.root, bucket, filepath.FromSlash(clean)), nil
}

// Upload writes the object. The content is staged in a temp file and renamed
// into place, so readers never observe a partial object.
func (s *Store) Upload(ctx context.Context, bucket, objectPath string, r io.Reader, opts UploadOptions) error {
	dst, err := s.resolve(bucket, objectPath)
	if err != nil {
		return err
	}
	if !opts.Upsert {
		if _, err := os.Stat(dst); err == nil {
			return ErrObjectExists
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, readerWithContext(ctx, r)); err != nil {
		tmp.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close object: %w", err)
	}

	if !opts.Upsert {
		// Link fails if dst appeared since the Stat above.
		if err := os.Link(tmp.Name(), dst); err != nil {
			if errors.Is(err, fs.ErrExist) {
				return ErrObjectExists
			}
			return fmt.Errorf("store object: %w", err)
		}
		return nil
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("store object: %w", err)
	}
	return nil
}

// Remove deletes the given objects. Missing objects are ignored.
func (s *Store) Remove(ctx context.Context, bucket string, paths ...string) error {
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		dst, err := s.resolve(bucket, p)
		if err != nil {
			return err
		}
		if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove object %s: %w", p, err)
		}
	}
	return nil
}

// Open returns a reader for the object or ErrNotFound.
func (s *Store) Open(bucket, objectPath string) (*os.File, error) {
	dst, err := s.resolve(bucket, objectPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// PublicURL is the URL the object is served under. It does not check existence.
func (s *Store) PublicURL(bucket, objectPath string) string {
	segs := strings.Split(strings.TrimLeft(objectPath, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return s.publicBase + "/" + bucket + "/" + strings.Join(segs, "/")
}

// ServeObject writes the object to w with Last-Modified and range support.
func (s *Store) ServeObject(w http.ResponseWriter, r *http.Request, bucket, objectPath string) error {
	f, err := s.Open(bucket, objectPath)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	if st.IsDir() {
		return ErrNotFound
	}
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
	return nil
}

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

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
