package main

import "salachat/internal/cli"

func main() {
	cli.Execute()
}
