package resolver

import (
	"bufio"
	"compress/bzip2"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ulikunitz/xz"
	"zombiezen.com/go/nix/nar"
	"zombiezen.com/go/nix/nixbase32"
)

const DefaultCacheURL = "https://cache.nixos.org"

// Cache resolves pinned store paths by downloading their NARs from a nix
// binary cache, for hosts without a nix installation. Unpinned names fail
// resolution: the cache has no way to map an attribute name to a store
// path on its own.
type Cache struct {
	URL      string
	StoreDir string
	Pins     map[string]string

	client *http.Client
}

type CacheConfig struct {
	URL      string
	StoreDir string
	Pins     map[string]string
	Timeout  time.Duration
}

func NewCache(cfg CacheConfig) *Cache {
	if cfg.URL == "" {
		cfg.URL = DefaultCacheURL
	}
	if cfg.StoreDir == "" {
		cfg.StoreDir = filepath.Join(XDGDataDir(), "store")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Minute
	}

	return &Cache{
		URL:      cfg.URL,
		StoreDir: cfg.StoreDir,
		Pins:     cfg.Pins,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Cache) Resolve(ctx context.Context, name string) (ResolvedPackage, error) {
	ref, err := ParseRef(name)
	if err != nil {
		return ResolvedPackage{}, err
	}

	pin, ok := c.Pins[name]
	if !ok {
		return ResolvedPackage{}, fmt.Errorf("package %q has no store path pin, cache resolution needs one", name)
	}

	digest, _, err := parseStorePath(pin)
	if err != nil {
		return ResolvedPackage{}, fmt.Errorf("invalid pin for %q: %w", name, err)
	}

	outPath := filepath.Join(c.StoreDir, filepath.Base(pin))

	if _, err := os.Stat(outPath); err != nil {
		if !os.IsNotExist(err) {
			return ResolvedPackage{}, err
		}

		info, err := c.fetchNARInfo(ctx, digest)
		if err != nil {
			return ResolvedPackage{}, fmt.Errorf("fetching narinfo for %q: %w", name, err)
		}

		if err := c.downloadAndUnpack(ctx, info, outPath); err != nil {
			return ResolvedPackage{}, fmt.Errorf("downloading %q: %w", name, err)
		}
	}

	return packageAt(ref.Name, outPath), nil
}

func (c *Cache) fetchNARInfo(ctx context.Context, digest string) (*NARInfo, error) {
	url := fmt.Sprintf("%s/%s.narinfo", c.URL, digest)
	slog.Debug("fetching narinfo", "url", url)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	b, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return parseNARInfo(string(b))
}

func (c *Cache) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

func (c *Cache) downloadAndUnpack(ctx context.Context, info *NARInfo, outPath string) error {
	if err := os.MkdirAll(c.StoreDir, 0o755); err != nil {
		return err
	}

	narFile, err := os.CreateTemp(c.StoreDir, "*.nar.download")
	if err != nil {
		return err
	}
	defer os.Remove(narFile.Name())
	defer narFile.Close()

	url := fmt.Sprintf("%s/%s", c.URL, info.URL)
	slog.Debug("downloading NAR", "url", url, "size", info.FileSize)

	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	hasher := sha256.New()
	if _, err := io.Copy(narFile, io.TeeReader(body, hasher)); err != nil {
		return fmt.Errorf("downloading NAR: %w", err)
	}

	if got := nixbase32.EncodeToString(hasher.Sum(nil)); got != info.FileHash {
		return fmt.Errorf("hash mismatch: expected %s, got %s", info.FileHash, got)
	}

	if _, err := narFile.Seek(0, io.SeekStart); err != nil {
		return err
	}

	var r io.Reader = bufio.NewReader(narFile)
	switch info.Compression {
	case "", "none":
	case "xz":
		if r, err = xz.NewReader(r); err != nil {
			return fmt.Errorf("creating xz reader: %w", err)
		}
	case "bzip2":
		r = bzip2.NewReader(r)
	default:
		return fmt.Errorf("unsupported compression: %s", info.Compression)
	}

	// unpack next to the final location, rename only on full success
	tmpDir, err := os.MkdirTemp(c.StoreDir, ".unpack-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	if err := unpackNAR(r, tmpDir); err != nil {
		return err
	}

	return os.Rename(tmpDir, outPath)
}

func unpackNAR(r io.Reader, destPath string) error {
	nr := nar.NewReader(r)

	for {
		hdr, err := nr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading NAR entry: %w", err)
		}

		target := filepath.Join(destPath, hdr.Path)

		switch hdr.Mode.Type() {
		case os.ModeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}
		case os.ModeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating parent directory: %w", err)
			}
			if err := os.Symlink(hdr.LinkTarget, target); err != nil {
				return fmt.Errorf("creating symlink: %w", err)
			}
		case 0: // regular file
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("creating parent directory: %w", err)
			}

			perm := os.FileMode(0o644)
			if hdr.Mode&0o111 != 0 {
				perm = 0o755
			}

			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
			if err != nil {
				return fmt.Errorf("creating file %s: %w", target, err)
			}

			_, err = io.Copy(f, nr)
			f.Close()
			if err != nil {
				return fmt.Errorf("writing file %s: %w", target, err)
			}
		default:
			return fmt.Errorf("unsupported NAR entry type for %s", hdr.Path)
		}
	}

	return nil
}
