package main

import "github.com/samsaffron/chatblocks/cmd"

func main() {
	cmd.Execute()
}
