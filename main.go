package main

import "voting-settlement/cli"

func main() {
	cli.Execute()
}
