package main

import "github.com/mvp-joe/jacbridge/internal/cli"

func main() {
	cli.Execute()
}
