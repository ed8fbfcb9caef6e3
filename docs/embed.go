// Package docs holds the long-form guides bundled with the ntn binary.
package docs

import "embed"

// FS contains the Markdown guides under guide/.
//
//go:embed guide
var FS embed.FS
