package main

import "github.com/KooshaPari/KlipDot/internal/cli"

func main() {
	cli.Execute()
}
