package main

import "github.com/docsage/docsage-cli/internal/adapters/driving/cli"

func main() {
	cli.Main()
}
