package main

import "github.com/essildoor/tengu-travels/cmd"

func main() {
	cmd.Execute()
}
