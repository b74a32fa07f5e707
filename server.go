// Package site wires the SocialTech marketing site: static assets, page
// routes and, in dev, live reload.
package site

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/socialtech/site/core"
)

type RuntimeConfig struct {
	Env         string
	EnableCache bool
	Port        int
	ConfigPath  string
}

var (
	ListenAndServe    = http.ListenAndServe
	ListenAndServeTLS = http.ListenAndServeTLS
	Exit              = os.Exit
)

const immutable = "public, max-age=31536000, immutable"

var Start = func(cfg RuntimeConfig) {
	fmt.Println("Starting SocialTech site in", cfg.Env, "mode...")

	config, addr, handler := build(cfg)

	var err error
	if config.SSL {
		fmt.Printf("✅ Site running at https://localhost%s\n", addr)
		err = ListenAndServeTLS(addr, config.CertFile, config.KeyFile, handler)
	} else {
		fmt.Printf("✅ Site running at http://localhost%s\n", addr)
		err = ListenAndServe(addr, handler)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Server failed: %v\n", err)
		Exit(1)
	}
}

// BuildServer returns the listen address and the complete handler for cfg.
func BuildServer(cfg RuntimeConfig) (string, http.Handler) {
	_, addr, handler := build(cfg)
	return addr, handler
}

func build(cfg RuntimeConfig) (core.Config, string, http.Handler) {
	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = core.DefaultConfigPath
	}

	config := core.LoadConfig(configPath)
	config.CacheEnabled = cfg.EnableCache

	public := core.PublicFS(core.SiteFS(config))

	mux := http.NewServeMux()

	ctx := core.RuntimeContext{Env: cfg.Env}

	if cfg.Env == "dev" {
		setupDevStaticRoutes(mux, public)

		reloader := core.NewLiveReloader()
		if config.SiteDir != "" {
			if err := reloader.Watch(config.SiteDir, core.DefaultWatchDelay); err != nil {
				log.Printf("Warning: not watching %s: %v", config.SiteDir, err)
			} else {
				log.Printf("Watching %s for changes", config.SiteDir)
			}
		}
		ctx.LiveReload = reloader
	} else {
		mux.Handle("/static/", makeStaticHandler(public, config.OutputDir))
		mux.HandleFunc("/favicon.ico", publicFileHandler(public, "favicon.ico", immutable))
		mux.HandleFunc("/robots.txt", robotsHandler(public, immutable))
	}

	mux.Handle("/", core.NewRouter(config, ctx))

	return config, fmt.Sprintf(":%d", cfg.Port), mux
}

func setupDevStaticRoutes(mux *http.ServeMux, public fs.FS) {
	files := http.FileServerFS(public)
	mux.Handle("/static/", http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, r)
	})))

	mux.HandleFunc("/favicon.ico", publicFileHandler(public, "favicon.ico", "no-store"))
	mux.HandleFunc("/robots.txt", robotsHandler(public, "no-store"))
}

func publicFileHandler(public fs.FS, name, cacheControl string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := fs.Stat(public, name); err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", cacheControl)
		http.ServeFileFS(w, r, public, name)
	}
}

// robotsHandler serves public/robots.txt, or an allow-all body when the site
// ships none.
func robotsHandler(public fs.FS, cacheControl string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", cacheControl)
		if _, err := fs.Stat(public, "robots.txt"); err == nil {
			http.ServeFileFS(w, r, public, "robots.txt")
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "User-agent: *\nDisallow:\n")
	}
}

// makeStaticHandler serves /static/ in prod. Minified copies under
// outputDir/static win over public files, and their .gz sibling wins when
// the client accepts gzip. A minified copy removed by clean is rebuilt from
// its public source on the next request.
func makeStaticHandler(public fs.FS, outputDir string) http.Handler {
	cacheDir := filepath.Join(outputDir, "static")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trimmed := strings.TrimPrefix(r.URL.Path, "/static/")
		if strings.Contains(trimmed, "..") {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}

		cachedFile := filepath.Join(cacheDir, filepath.FromSlash(trimmed))

		if serveFromCache(w, r, cachedFile) {
			return
		}

		name := path.Clean(trimmed)
		if info, err := fs.Stat(public, name); err == nil && !info.IsDir() {
			w.Header().Set("Content-Type", detectMimeType(name))
			w.Header().Set("Cache-Control", immutable)
			http.ServeFileFS(w, r, public, name)
			return
		}

		if core.RebuildMinified(public, name, outputDir) && serveFromCache(w, r, cachedFile) {
			return
		}

		http.NotFound(w, r)
	})
}

func serveFromCache(w http.ResponseWriter, r *http.Request, cachedFile string) bool {
	if acceptsGzip(r) {
		gzipFile := cachedFile + ".gz"
		if info, err := os.Stat(gzipFile); err == nil && !info.IsDir() {
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Set("Vary", "Accept-Encoding")
			w.Header().Set("Content-Type", detectMimeType(cachedFile))
			serveFileWithHeaders(w, r, gzipFile, immutable)
			return true
		}
	}

	if info, err := os.Stat(cachedFile); err == nil && !info.IsDir() {
		serveFileWithHeaders(w, r, cachedFile, immutable)
		return true
	}

	return false
}

func serveFileWithHeaders(w http.ResponseWriter, r *http.Request, file, cacheControl string) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", detectMimeType(file))
	}
	w.Header().Set("Cache-Control", cacheControl)
	http.ServeFile(w, r, file)
}

func detectMimeType(name string) string {
	switch filepath.Ext(name) {
	case ".css":
		return "text/css"
	case ".js":
		return "application/javascript"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".ico":
		return "image/x-icon"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/octet-stream"
	}
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}
