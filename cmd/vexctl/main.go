package main

import "github.com/vex-labs/ticket-view/internal/cli"

func main() {
	cli.Execute()
}
