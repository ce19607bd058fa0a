package main

import "github.com/v-gjy/redwood/internal/cli"

func main() {
	cli.Execute()
}
