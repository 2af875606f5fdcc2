package main

import "github.com/addissoft/go-eims-client/cmd/eims/cmd"

func main() {
	cmd.Execute()
}
