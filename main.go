package main

import "github.com/theirongolddev/cashpulse/cmd"

func main() {
	cmd.Execute()
}
