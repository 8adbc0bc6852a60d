package main

import "github.com/oshokin/bob/cmd/bob/cmd"

func main() {
	cmd.Execute()
}
