package main

import "arbscan/cmd"

func main() {
	cmd.Execute()
}
