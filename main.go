package main

import (
	"schema-vault/cmd"
)

// Version information (set by build flags)
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	cmd.SetVersionInfo(Version, GitCommit)
	cmd.Execute()
}
