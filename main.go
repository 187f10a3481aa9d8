package main

import "github.com/KaramelBytes/sift-cli/cmd"

func main() {
	cmd.Execute()
}
