package main

import "github.com/notargets/inp2feap/cmd"

func main() {
	cmd.Execute()
}
