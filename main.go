package main

import "ctm/cmd"

func main() {
	cmd.Execute()
}
