package main

import "github.com/mrlokans/shelf/internal/entrypoint"

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	entrypoint.Execute(Version + " (" + Commit + ")")
}
