package main

import "modpm/internal/cli"

func main() {
	cli.Execute()
}
