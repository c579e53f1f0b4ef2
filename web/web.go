package web

import "embed"

// Static holds the embedded web/static directory: the admin shell page and
// its script. Handlers access it via fs.Sub(Static, "static").
//
//go:embed static
var Static embed.FS
