package main

import "github.com/kiesman99/tilesplit/cmd"

func main() {
	cmd.Execute()
}
