package main

import "equiploan/cmd/client/cmd"

func main() {
	cmd.Execute()
}
