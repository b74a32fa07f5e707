package core

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

const layoutDirective = "<!-- layout:"

type pageTemplate struct {
	tmpl  *template.Template
	entry string
}

// Renderer parses routes/<page>/index.html together with its layout and all
// components. Parsed pages are kept until the process exits unless reload is
// set, in which case every Render parses from the filesystem again.
type Renderer struct {
	fsys   fs.FS
	funcs  template.FuncMap
	reload bool

	mu    sync.RWMutex
	pages map[string]*pageTemplate
}

func NewRenderer(fsys fs.FS, funcs template.FuncMap, reload bool) *Renderer {
	return &Renderer{
		fsys:   fsys,
		funcs:  funcs,
		reload: reload,
		pages:  make(map[string]*pageTemplate),
	}
}

func pagePath(page string) string {
	return path.Join("routes", page, "index.html")
}

// Render executes page into w. The output is buffered so a failing template
// never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, page string, data interface{}) error {
	pt, err := r.lookup(page)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := pt.tmpl.ExecuteTemplate(&buf, pt.entry, data); err != nil {
		return fmt.Errorf("execute %s: %w", page, err)
	}

	_, err = buf.WriteTo(w)
	return err
}

func (r *Renderer) lookup(page string) (*pageTemplate, error) {
	if !r.reload {
		r.mu.RLock()
		pt, ok := r.pages[page]
		r.mu.RUnlock()
		if ok {
			return pt, nil
		}
	}

	pt, err := r.parse(page)
	if err != nil {
		return nil, err
	}

	if !r.reload {
		r.mu.Lock()
		r.pages[page] = pt
		r.mu.Unlock()
	}

	return pt, nil
}

func (r *Renderer) parse(page string) (*pageTemplate, error) {
	file := pagePath(page)
	content, err := fs.ReadFile(r.fsys, file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", page, ErrPageNotFound)
	}

	components, err := r.Components()
	if err != nil {
		return nil, err
	}

	files := append([]string{}, components...)
	layout := parseLayoutDirective(string(content))
	if layout != "" {
		files = append([]string{layout}, files...)
	}

	tmpl := template.New(file).Funcs(r.funcs)
	for _, name := range files {
		src, err := fs.ReadFile(r.fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := tmpl.New(name).Parse(string(src)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
	}
	if _, err := tmpl.Parse(string(content)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}

	entry := file
	if layout != "" {
		entry = "layout"
	}

	return &pageTemplate{tmpl: tmpl, entry: entry}, nil
}

// parseLayoutDirective returns the path from a `<!-- layout: path -->` line,
// or "" when the page has none.
func parseLayoutDirective(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, layoutDirective) && strings.HasSuffix(line, "-->") {
			return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, layoutDirective), "-->"))
		}
	}
	return ""
}

func (r *Renderer) Components() ([]string, error) {
	components, err := fs.Glob(r.fsys, "components/*.html")
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	return components, nil
}

// Pages lists every directory under routes/ that has an index.html.
func (r *Renderer) Pages() []string {
	var pages []string
	fs.WalkDir(r.fsys, "routes", func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || p == "routes" {
			return nil
		}
		page := strings.TrimPrefix(p, "routes/")
		if _, err := fs.Stat(r.fsys, pagePath(page)); err == nil {
			pages = append(pages, page)
		}
		return nil
	})
	sort.Strings(pages)
	return pages
}
