package main

import "github.com/smazurov/sidecar/cmd"

func main() {
	cmd.Execute()
}
