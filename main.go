package main

import "scholarmap/bibnet/cmd"

func main() {
	cmd.Execute()
}
