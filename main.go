package main

import "github.com/ljos/budzilla/cmd"

func main() {
	cmd.Execute()
}
