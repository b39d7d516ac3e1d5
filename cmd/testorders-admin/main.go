package main

import "github.com/labnet/testorders/cmd/testorders-admin/command"

func main() {
	command.Execute()
}
