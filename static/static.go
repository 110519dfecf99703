// Package static embeds the polling web UI.
package static

import "embed"

//go:embed index.html css js
var FS embed.FS
