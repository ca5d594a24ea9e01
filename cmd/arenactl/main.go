package main

import "github.com/mcoot/arenagame-go/internal/cli"

func main() {
	cli.Execute()
}
