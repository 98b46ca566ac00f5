package main

import (
	"os"

	"lunec/cmd"
)

func main() {
	os.Exit(cmd.RunCompiler())
}
