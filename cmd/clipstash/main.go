package main

import (
	"github.com/berrythewa/clipstash/internal/cli"
)

var (
	version   = "dev"
	buildTime = "unknown"
	commit    = "none"
)

func main() {
	cli.Version = version
	cli.BuildTime = buildTime
	cli.Commit = commit

	cli.Execute()
}
