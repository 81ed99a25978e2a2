// cmd/adapterbench/main.go
package main

import (
	"github.com/mwiater/adapterbench/internal/commands"
)

// Set by -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	setVersionInfo = commands.SetVersionInfo
	executeCmd     = commands.Execute
)

// main injects build metadata and hands control to the cobra command tree.
func main() {
	setVersionInfo(version, commit, date)
	executeCmd()
}
