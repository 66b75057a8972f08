package main

import "github.com/josephlewis42/keyshell/cmd"

func main() {
	cmd.Execute()
}
