package mingle

import (
	"crypto/sha1"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

// StaticFS wraps an http.FileSystem with etag support, cache control headers
// and a fallback file, so a single-page frontend build can be served from
// the app binary.
type StaticFS struct {
	http.FileSystem
	etags map[string]string
	// a map of globs to cache control headers
	cacheControl map[string]string
	fallbackFile string
}

func NewStaticFS(fsys fs.FS, fallback string, cacheControl map[string]string) (*StaticFS, error) {
	if _, err := fsys.Open(fallback); err != nil {
		return nil, fmt.Errorf("opening fallback file %s: %w", fallback, err)
	}

	etags, err := calculateEtags(fsys)
	if err != nil {
		return nil, fmt.Errorf("calculating etags: %w", err)
	}
	cc, err := expandCacheControl(fsys, cacheControl)
	if err != nil {
		return nil, fmt.Errorf("expanding cache control paths: %w", err)
	}

	return &StaticFS{FileSystem: http.FS(fsys), etags: etags, cacheControl: cc, fallbackFile: fallback}, nil
}

// Open returns the file if found, otherwise the fallback file.
func (sfs StaticFS) Open(name string) (http.File, error) {
	f, err := sfs.FileSystem.Open(name)
	if err != nil {
		if os.IsNotExist(err) {
			return sfs.FileSystem.Open(sfs.fallbackFile)
		}
		return nil, err
	}
	return f, nil
}

func calculateEtags(fsys fs.FS) (map[string]string, error) {
	etags := make(map[string]string)
	hasher := sha1.New()
	return etags, fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		f, err := fsys.Open(p)
		if err != nil {
			return fmt.Errorf("opening %s: %w", p, err)
		}
		defer f.Close()
		defer hasher.Reset()
		if _, err := io.Copy(hasher, f); err != nil {
			return fmt.Errorf("hashing %s: %w", p, err)
		}
		etags[p] = fmt.Sprintf("%x", hasher.Sum(nil))
		return nil
	})
}

func expandCacheControl(fsys fs.FS, cacheControl map[string]string) (map[string]string, error) {
	expanded := make(map[string]string)
	return expanded, fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for glob, cc := range cacheControl {
			matched, err := filepath.Match(glob, p)
			if err != nil {
				return fmt.Errorf("matching %s: %w", p, err)
			}
			if matched {
				expanded[p] = cc
				return nil
			}
		}
		return nil
	})
}

func (sfs StaticFS) EtagMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if len(path) > 0 && path[0] == '/' {
				path = path[1:]
			}
			if _, ok := sfs.etags[path]; !ok {
				path = sfs.fallbackFile
			}

			if matched := r.Header.Get("If-None-Match"); matched != "" {
				if etag, ok := sfs.etags[path]; ok && matched == etag {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}

			if etag, ok := sfs.etags[path]; ok {
				w.Header().Set("Etag", etag)
				if cc, ok := sfs.cacheControl[path]; ok {
					w.Header().Set("Cache-Control", cc)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
