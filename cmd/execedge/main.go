package main

import "execedge/cmd/execedge/root"

func main() {
	root.Execute()
}
