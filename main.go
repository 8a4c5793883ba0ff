package main

import (
	"github.com/xmazu/envsync/cmd"
)

var Version string

func main() {
	cmd.SetVersion(Version)
	cmd.Execute()
}
