// Package web holds the site's templates and public assets.
package web

import "embed"

// FS is rooted at the site directory: layouts/, components/, routes/ and public/.
//
//go:embed all:layouts all:components all:routes all:public
var FS embed.FS
