package main

import "leximini/internal/cli"

func main() {
	cli.Execute()
}
