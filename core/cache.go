package core

import (
	"compress/gzip"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func cachePath(config Config, route string) string {
	return filepath.Join(config.OutputDir, route, "index.html")
}

func GetCachedHTML(config Config, route string) ([]byte, bool) {
	content, err := os.ReadFile(cachePath(config, route))
	if err != nil {
		return nil, false
	}
	return content, true
}

// GetCachedGzip returns the gzipped sibling written by SaveCachedHTML.
func GetCachedGzip(config Config, route string) ([]byte, bool) {
	content, err := os.ReadFile(cachePath(config, route) + ".gz")
	if err != nil {
		return nil, false
	}
	return content, true
}

// SaveCachedHTML writes index.html and index.html.gz for route. Each file is
// written to a temp name and renamed so concurrent readers never see a
// partial page.
func SaveCachedHTML(config Config, route string, html []byte) error {
	htmlPath := cachePath(config, route)
	if err := os.MkdirAll(filepath.Dir(htmlPath), os.ModePerm); err != nil {
		return err
	}

	if err := writeAtomic(htmlPath, func(f *os.File) error {
		_, err := f.Write(html)
		return err
	}); err != nil {
		return err
	}

	return writeAtomic(htmlPath+".gz", func(f *os.File) error {
		gz := gzip.NewWriter(f)
		if _, err := gz.Write(html); err != nil {
			return err
		}
		return gz.Close()
	})
}

func writeAtomic(path string, write func(*os.File) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// CachedPages counts rendered pages under the cache directory.
func CachedPages(config Config) int {
	count := 0
	filepath.WalkDir(config.OutputDir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(path, ".html") {
			count++
		}
		return nil
	})
	return count
}
