package main

import "coanime/cmd/jikan-sync/command"

func main() {
	command.Execute()
}
