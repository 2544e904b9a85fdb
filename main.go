package main

import "zonecheck/cli"

func main() {
	cli.Run()
}
