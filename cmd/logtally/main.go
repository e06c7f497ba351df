package main

import "github.com/atikulmunna/logtally/internal/cmd"

func main() {
	cmd.Execute()
}
