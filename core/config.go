package core

import (
	"io/fs"
	"os"

	"github.com/socialtech/site/web"
	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "socialtech.config.yml"

type Config struct {
	OutputDir      string   `yaml:"outputDir"`
	CacheEnabled   bool     `yaml:"cache"`
	DebugHeaders   bool     `yaml:"debugHeaders"`
	DebugLogs      bool     `yaml:"debugLogs"`
	SiteDir        string   `yaml:"siteDir"`
	SiteName       string   `yaml:"siteName"`
	SessionSecret  string   `yaml:"sessionSecret"`
	SecureCookies  bool     `yaml:"secureCookies"`
	SSL            bool     `yaml:"ssl"`
	CertFile       string   `yaml:"certFile"`
	KeyFile        string   `yaml:"keyFile"`
	TrustedProxies []string `yaml:"trustedProxies"`
	MaxUploadMB    int64    `yaml:"maxUploadMB"`
}

func defaultConfig() Config {
	return Config{
		OutputDir:    "./cache",
		CacheEnabled: false,
		DebugHeaders: false,
		DebugLogs:    false,
		SiteName:     "SocialTech",
		MaxUploadMB:  8,
	}
}

// LoadConfig reads the YAML config at path. A missing or unreadable file
// yields the defaults; environment overrides apply in both cases.
var LoadConfig = func(path string) Config {
	cfg := defaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		var fromFile Config
		if err := yaml.Unmarshal(data, &fromFile); err == nil {
			cfg = fromFile
		}
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "./cache"
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "SocialTech"
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 8
	}

	if v := os.Getenv("SOCIALTECH_SESSION_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv("SOCIALTECH_SITE_DIR"); v != "" {
		cfg.SiteDir = v
	}

	return cfg
}

// SiteFS returns the directory holding layouts, components, routes and
// public assets: SiteDir on disk when set, otherwise the embedded copy.
func SiteFS(config Config) fs.FS {
	if config.SiteDir != "" {
		return os.DirFS(config.SiteDir)
	}
	return web.FS
}

// PublicFS is the public/ subtree of the site filesystem.
func PublicFS(site fs.FS) fs.FS {
	public, err := fs.Sub(site, "public")
	if err != nil {
		return site
	}
	return public
}
