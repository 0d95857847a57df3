package main

import "github.com/fullcarts/shrinktrack/internal/cmd"

func main() {
	cmd.Execute()
}
