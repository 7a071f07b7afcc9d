// Package configs embeds the built-in game variant catalogs.
package configs

import "embed"

// FS holds games/default.yaml, games/<variant>.yaml and
// games/<variant>/seasons/<season>.yaml.
//
//go:embed games
var FS embed.FS
