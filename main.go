package main

import "github.com/ebbieaden/ensdapp/cmd"

func main() {
	cmd.Execute()
}
