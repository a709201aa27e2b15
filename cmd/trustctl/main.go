package main

import "github.com/bryanwahyu/automaton-trust/internal/cli"

func main() {
	cli.Execute()
}
