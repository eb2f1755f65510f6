package main

import "github.com/mselser95/hoops-edge/cmd"

func main() {
	cmd.Execute()
}
