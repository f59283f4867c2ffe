package main

import (
	"github.com/toolshed/shedmon/cmd/shedmon/cmd"
)

func main() {
	cmd.Execute()
}
