package main

import "github.com/forPelevin/clipideas/internal/cli"

func main() {
	cli.Main()
}
