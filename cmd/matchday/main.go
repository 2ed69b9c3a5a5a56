package main

import "github.com/five82/matchday/cmd/matchday/root"

func main() {
	root.Execute()
}
