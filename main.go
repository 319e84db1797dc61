package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/HarrisKClark/Genesim-sub001/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
