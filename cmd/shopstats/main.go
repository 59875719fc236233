package main

import "github.com/matthieukhl/shopstats/internal/cmd"

func main() {
	cmd.Execute()
}
