package main

import "github.com/jfmyers9/earshot/cmd"

func main() {
	cmd.Execute()
}
