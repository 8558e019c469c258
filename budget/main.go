package main

import "github.com/howeyc/budget/budget/cmd"

func main() {
	cmd.Execute()
}
