package main

import "github.com/oshokin/deployer/cmd/deployer/cmd"

func main() {
	cmd.Execute()
}
