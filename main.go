package main

import "github.com/mpapenbr/racelog-report/cmd"

func main() {
	cmd.Execute()
}
