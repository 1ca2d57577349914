package main

import "github.com/teleops/dashstrap/cmd"

func main() {
	cmd.Execute()
}
