package main

import "github.com/mysticcoders/freshbooks-tools/cmd"

func main() {
	cmd.Execute()
}
