package main

import "github.com/tkoehler/jKV/cmd"

func main() {
	cmd.Execute()
}
