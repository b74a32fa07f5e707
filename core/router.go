package core

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tdewolff/minify/v2"
	minhtml "github.com/tdewolff/minify/v2/html"
)

// RuntimeContext carries what the process mode adds to the router. A
// non-nil LiveReload is mounted at LiveReloadPath and every page loads the
// reload script.
type RuntimeContext struct {
	Env        string
	LiveReload http.Handler
}

// Page is one of the site's fixed routes.
type Page struct {
	Name      string
	Path      string
	Title     string
	Cacheable bool
}

var (
	contactPage = Page{Name: "contact", Path: "/contact", Title: "Contact Us"}
	joinPage    = Page{Name: "join", Path: "/join", Title: "Join Our Team"}
)

var Pages = []Page{
	{Name: "home", Path: "/", Title: "Home", Cacheable: true},
	{Name: "about", Path: "/about", Title: "About Us", Cacheable: true},
	{Name: "services", Path: "/services", Title: "Our Services", Cacheable: true},
	{Name: "projects", Path: "/projects", Title: "Projects", Cacheable: true},
	contactPage,
	joinPage,
}

const errorPage = "_error"

// PageData is what every page template receives.
type PageData struct {
	Title      string
	Page       string
	SiteName   string
	Year       int
	LiveReload bool
	Messages   []Message
}

type Router struct {
	config     Config
	env        string
	liveReload http.Handler
	engine     *gin.Engine
	renderer   *Renderer
	messenger  *Messenger
	minifier   *minify.M
}

var NewRouter = func(config Config, ctx RuntimeContext) http.Handler {
	return newRouter(config, ctx, SiteFS(config))
}

func newRouter(config Config, ctx RuntimeContext, site fs.FS) *Router {
	if ctx.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	assets := NewAssets(ctx.Env, PublicFS(site), config.OutputDir)

	m := minify.New()
	m.AddFunc("text/html", minhtml.Minify)

	r := &Router{
		config:     config,
		env:        ctx.Env,
		liveReload: ctx.LiveReload,
		engine:     gin.New(),
		renderer:   NewRenderer(site, TemplateFuncs(assets), ctx.Env == "dev"),
		messenger:  NewMessenger([]byte(config.SessionSecret), config.SecureCookies),
		minifier:   m,
	}

	r.engine.MaxMultipartMemory = config.MaxUploadMB << 20
	if len(config.TrustedProxies) > 0 {
		if err := r.engine.SetTrustedProxies(config.TrustedProxies); err != nil {
			log.Printf("Warning: invalid trusted proxies %v: %v", config.TrustedProxies, err)
		}
	} else {
		r.engine.SetTrustedProxies(nil)
	}

	r.engine.Use(gin.Recovery())
	r.engine.Use(requestID())
	r.engine.Use(accessLog())
	r.engine.Use(secure.New(r.secureConfig()))

	r.setupRoutes()
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.engine.ServeHTTP(w, req)
}

func (r *Router) setupRoutes() {
	for _, page := range Pages {
		r.engine.GET(page.Path, r.pageHandler(page))
	}

	r.engine.POST(contactPage.Path, r.contactSubmit)
	r.engine.POST(joinPage.Path, r.joinSubmit)

	if r.liveReload != nil {
		r.engine.GET(LiveReloadPath, gin.WrapH(r.liveReload))
	}

	r.engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	r.engine.NoRoute(r.notFound)
}

func (r *Router) secureConfig() secure.Config {
	cfg := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}

	// HSTS only when TLS terminates here, not behind a proxy
	if r.config.SSL {
		cfg.SSLRedirect = true
		cfg.STSSeconds = 31536000
		cfg.STSIncludeSubdomains = true
	}

	return cfg
}

func (r *Router) pageHandler(page Page) gin.HandlerFunc {
	cacheable := page.Cacheable && r.config.CacheEnabled

	return func(c *gin.Context) {
		if cacheable && r.serveCached(c, page) {
			return
		}

		var messages []Message
		if !page.Cacheable {
			popped, err := r.messenger.Pop(c.Writer, c.Request)
			if err != nil {
				log.Printf("flash: pop on %s: %v", page.Path, err)
			}
			messages = popped
		}

		r.respond(c, page, messages, cacheable)
	}
}

// respond renders page with messages and writes it with status 200,
// storing it in the page cache when save is set.
func (r *Router) respond(c *gin.Context, page Page, messages []Message, save bool) {
	data := r.pageData(page.Name, page.Title)
	data.Messages = messages

	html, err := r.render(page.Name, data)
	if err != nil {
		r.renderFailure(c, page.Name, err)
		return
	}

	if save {
		if err := SaveCachedHTML(r.config, page.Name, html); err != nil {
			log.Printf("cache: save %s: %v", page.Name, err)
		}
	}

	r.writeHTML(c, http.StatusOK, page.Name, "MISS", html)
}

func (r *Router) pageData(name, title string) PageData {
	return PageData{
		Title:      title,
		Page:       name,
		SiteName:   r.config.SiteName,
		Year:       time.Now().Year(),
		LiveReload: r.liveReload != nil,
	}
}

// render executes a page and, in prod, minifies the HTML. A minifier
// failure falls back to the unminified output.
func (r *Router) render(page string, data PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.renderer.Render(&buf, page, data); err != nil {
		return nil, err
	}

	if r.env != "prod" {
		return buf.Bytes(), nil
	}

	var out bytes.Buffer
	if err := r.minifier.Minify("text/html", &out, bytes.NewReader(buf.Bytes())); err != nil {
		log.Printf("minify %s: %v", page, err)
		return buf.Bytes(), nil
	}
	return out.Bytes(), nil
}

func (r *Router) serveCached(c *gin.Context, page Page) bool {
	if acceptsGzip(c.Request) {
		if gz, ok := GetCachedGzip(r.config, page.Name); ok {
			c.Header("Content-Encoding", "gzip")
			c.Header("Vary", "Accept-Encoding")
			r.writeHTML(c, http.StatusOK, page.Name, "HIT", gz)
			return true
		}
	}

	if html, ok := GetCachedHTML(r.config, page.Name); ok {
		r.writeHTML(c, http.StatusOK, page.Name, "HIT", html)
		return true
	}

	return false
}

func (r *Router) writeHTML(c *gin.Context, status int, page, cacheState string, body []byte) {
	if r.config.DebugHeaders {
		c.Header("X-Site-Page", page)
		c.Header("X-Site-Cache", cacheState)
	}
	c.Data(status, "text/html; charset=utf-8", body)
}

func (r *Router) renderFailure(c *gin.Context, page string, err error) {
	if IsNotFoundError(err) {
		r.notFound(c)
		return
	}
	log.Printf("render %s: %v", page, err)
	c.String(http.StatusInternalServerError, "Template error")
}

func (r *Router) notFound(c *gin.Context) {
	html, err := r.render(errorPage, r.pageData("error", "Page Not Found"))
	if err != nil {
		if !errors.Is(err, ErrPageNotFound) {
			log.Printf("render %s: %v", errorPage, err)
		}
		c.String(http.StatusNotFound, "404 page not found")
		return
	}
	r.writeHTML(c, http.StatusNotFound, errorPage, "MISS", html)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// accessLog writes Apache combined log lines.
func accessLog() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s"`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
		)
	})
}

func acceptsGzip(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")
}
