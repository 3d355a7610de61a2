package main

import "github.com/andrescamacho/seafaring-go/internal/adapters/cli"

func main() {
	cli.Execute()
}
