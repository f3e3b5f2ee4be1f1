package main

import "github.com/mpavel/homescreen/internal/cli"

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.Execute(version)
}
