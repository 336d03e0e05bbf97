package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrBlobExists   = errors.New("blob already exists")
	ErrBlobNotFound = errors.New("blob not found")
	ErrInvalidKey   = errors.New("invalid blob key")
)

const stagingPrefix = ".staging"

// StagedBlob is an upload written to the staging area but not yet
// addressable under its final key.
type StagedBlob struct {
	Key  string
	Size int64 // measured from the stored bytes
}

// BlobStore holds file contents addressed by slash-separated keys.
type BlobStore interface {
	// Stage writes r to a fresh staging key and reports the stored size.
	Stage(ctx context.Context, r io.Reader) (StagedBlob, error)
	// Promote moves a staged blob to finalKey. It fails with ErrBlobExists
	// rather than overwrite, and never leaves the content under both keys.
	Promote(ctx context.Context, staged StagedBlob, finalKey string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Presigner is implemented by stores that can hand out direct download URLs.
type Presigner interface {
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// LocalBlobStore keeps blobs in a directory on the local filesystem.
// Staged files live in a subdirectory of the same tree so promotion is a
// same-filesystem rename.
type LocalBlobStore struct {
	root string
}

func NewLocalBlobStore(dir string) (*LocalBlobStore, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, stagingPrefix), 0o750); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", root, err)
	}
	return &LocalBlobStore{root: root}, nil
}

// Root returns the absolute storage directory.
func (s *LocalBlobStore) Root() string {
	return s.root
}

func (s *LocalBlobStore) Stage(ctx context.Context, r io.Reader) (StagedBlob, error) {
	f, err := os.CreateTemp(filepath.Join(s.root, stagingPrefix), "upload-*.part")
	if err != nil {
		return StagedBlob{}, fmt.Errorf("create staging file: %w", err)
	}
	name := f.Name()

	fail := func(err error) (StagedBlob, error) {
		_ = f.Close()
		_ = os.Remove(name)
		return StagedBlob{}, err
	}

	if _, err := io.Copy(f, &ctxReader{ctx: ctx, r: r}); err != nil {
		return fail(fmt.Errorf("write staging file: %w", err))
	}
	if err := f.Sync(); err != nil {
		return fail(fmt.Errorf("sync staging file: %w", err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return StagedBlob{}, fmt.Errorf("close staging file: %w", err)
	}

	// Size comes from what landed on disk, not from what the client claimed.
	fi, err := os.Stat(name)
	if err != nil {
		_ = os.Remove(name)
		return StagedBlob{}, fmt.Errorf("stat staging file: %w", err)
	}

	return StagedBlob{
		Key:  path.Join(stagingPrefix, filepath.Base(name)),
		Size: fi.Size(),
	}, nil
}

func (s *LocalBlobStore) Promote(ctx context.Context, staged StagedBlob, finalKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if isStagingKey(finalKey) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, finalKey)
	}
	src, err := s.resolve(staged.Key)
	if err != nil {
		return err
	}
	dst, err := s.resolve(finalKey)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(dst), err)
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrBlobExists, finalKey)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", finalKey, err)
	}

	// rename(2) is atomic within one filesystem: either the staged name or
	// the final name exists afterwards, never both.
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("promote %s: %w", finalKey, err)
	}
	return nil
}

func (s *LocalBlobStore) Delete(ctx context.Context, key string) error {
	p, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *LocalBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}

// resolve maps key to a path under root, refusing anything that escapes it.
func (s *LocalBlobStore) resolve(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	full := filepath.Join(s.root, filepath.FromSlash(clean))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return full, nil
}

func isStagingKey(key string) bool {
	return key == stagingPrefix || strings.HasPrefix(path.Clean(key), stagingPrefix+"/")
}

// ctxReader stops a copy once the request context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
