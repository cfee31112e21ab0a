package main

import "github.com/datasage/datasage/cmd"

func main() {
	cmd.Execute()
}
