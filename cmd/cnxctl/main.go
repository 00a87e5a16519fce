package main

import "github.com/studylink/cnxgest/cmd/cnxctl/commands"

func main() {
	commands.Execute()
}
