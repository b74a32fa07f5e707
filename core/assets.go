package core

import (
	"bytes"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Masterminds/sprig/v3"
	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	minjs "github.com/tdewolff/minify/v2/js"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Assets resolves /static/ URLs used by templates. In prod, css and js are
// minified into cacheDir/static on first use. The resulting URL is
// remembered while its file exists; a cleaned cache is rebuilt on the next
// call.
type Assets struct {
	env      string
	public   fs.FS
	cacheDir string

	mu       sync.Mutex
	resolved map[string]minifiedAsset
}

type minifiedAsset struct {
	url  string
	file string
}

func NewAssets(env string, public fs.FS, cacheDir string) *Assets {
	return &Assets{
		env:      env,
		public:   public,
		cacheDir: cacheDir,
		resolved: make(map[string]minifiedAsset),
	}
}

func (a *Assets) Minify(urlPath string) string {
	if a.env != "prod" {
		return urlPath
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if asset, ok := a.resolved[urlPath]; ok {
		if asset.file == "" {
			return asset.url
		}
		if _, err := os.Stat(asset.file); err == nil {
			return asset.url
		}
	}

	out := MinifyAsset(a.env, a.public, urlPath, a.cacheDir)
	asset := minifiedAsset{url: out}
	if out != urlPath {
		asset.file = staticCachePath(a.cacheDir, out)
	}
	a.resolved[urlPath] = asset
	return out
}

// staticCachePath maps a /static/ URL, query included, to its file under
// cacheDir/static.
func staticCachePath(cacheDir, url string) string {
	rel := strings.TrimPrefix(url, "/static/")
	if i := strings.IndexByte(rel, '?'); i >= 0 {
		rel = rel[:i]
	}
	return filepath.Join(cacheDir, "static", filepath.FromSlash(rel))
}

// RebuildMinified recreates a missing minified asset, such as
// css/site.min.css, from its public source. rel is the path below /static/.
// It reports whether the minified file exists afterwards.
func RebuildMinified(public fs.FS, rel, cacheDir string) bool {
	ext := path.Ext(rel)
	base := strings.TrimSuffix(path.Base(rel), ext)
	if (ext != ".css" && ext != ".js") || !strings.HasSuffix(base, ".min") {
		return false
	}

	source := path.Join("/static", path.Dir(rel), strings.TrimSuffix(base, ".min")+ext)
	if MinifyAsset("prod", public, source, cacheDir) == source {
		return false
	}

	_, err := os.Stat(staticCachePath(cacheDir, "/static/"+rel))
	return err == nil
}

// MinifyAsset minifies a css or js file from public into
// cacheDir/static/<dir>/<name>.min<ext> plus a .gz sibling and returns the
// versioned URL. Any failure returns urlPath unchanged.
func MinifyAsset(env string, public fs.FS, urlPath string, cacheDir string) string {
	if env != "prod" {
		return urlPath
	}

	ext := path.Ext(urlPath)
	if ext != ".css" && ext != ".js" {
		return urlPath
	}

	rel := strings.TrimPrefix(urlPath, "/static/")
	name := strings.TrimSuffix(path.Base(rel), ext)
	if strings.Contains(name, ".min") {
		return urlPath
	}

	original, err := fs.ReadFile(public, rel)
	if err != nil {
		return urlPath
	}

	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	m.AddFunc("application/javascript", minjs.Minify)

	var buf bytes.Buffer
	var minifyErr error

	switch ext {
	case ".css":
		minifyErr = m.Minify("text/css", &buf, bytes.NewReader(original))
	case ".js":
		minifyErr = m.Minify("application/javascript", &buf, bytes.NewReader(original))
	}

	if minifyErr != nil {
		return urlPath
	}

	minified := buf.Bytes()
	minRel := path.Join(path.Dir(rel), name+".min"+ext)
	minPath := filepath.Join(cacheDir, "static", filepath.FromSlash(minRel))

	if err := os.MkdirAll(filepath.Dir(minPath), os.ModePerm); err != nil {
		return urlPath
	}
	if err := os.WriteFile(minPath, minified, 0644); err != nil {
		return urlPath
	}

	if f, err := os.Create(minPath + ".gz"); err == nil {
		gz := gzip.NewWriter(f)
		if _, err := gz.Write(minified); err == nil {
			_ = gz.Close()
		}
		f.Close()
	}

	return fmt.Sprintf("/static/%s?v=%s", minRel, contentHash(minified))
}

// Versioned appends a short content hash so browsers can cache forever.
func (a *Assets) Versioned(urlPath string) string {
	if !strings.HasPrefix(urlPath, "/static/") {
		return urlPath
	}

	rel := strings.TrimPrefix(urlPath, "/static/")

	if content, err := fs.ReadFile(a.public, rel); err == nil {
		return fmt.Sprintf("/static/%s?v=%s", rel, contentHash(content))
	}
	if content, err := os.ReadFile(filepath.Join(a.cacheDir, "static", filepath.FromSlash(rel))); err == nil {
		return fmt.Sprintf("/static/%s?v=%s", rel, contentHash(content))
	}

	return urlPath
}

func contentHash(content []byte) string {
	h := md5.Sum(content)
	return hex.EncodeToString(h[:])[:6]
}

// TemplateFuncs is sprig's function map plus the site helpers.
func TemplateFuncs(a *Assets) template.FuncMap {
	funcs := sprig.FuncMap()

	funcs["minify"] = a.Minify
	funcs["versioned"] = a.Versioned
	funcs["title"] = func(s string) string {
		// a Caser holds state and must not be shared across goroutines
		return cases.Title(language.English).String(s)
	}
	funcs["props"] = func(values ...interface{}) map[string]interface{} {
		if len(values)%2 != 0 {
			panic("props must be called with even number of arguments")
		}
		m := make(map[string]interface{}, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				panic("props keys must be strings")
			}
			m[key] = values[i+1]
		}
		return m
	}
	funcs["safeHTML"] = func(s interface{}) template.HTML {
		switch val := s.(type) {
		case template.HTML:
			return val
		case string:
			return template.HTML(val)
		default:
			return ""
		}
	}

	return funcs
}
