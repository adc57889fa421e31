package main

import "equiploan/cmd/server/cmd"

func main() {
	cmd.Execute()
}
