package main

import "github.com/veritb/veritb/cmd/veritb/cmd"

func main() {
	cmd.Execute()
}
