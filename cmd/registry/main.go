package main

import "github.com/users333/faculty-registry/internal/cli"

func main() {
	cli.Execute()
}
