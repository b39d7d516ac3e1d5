package main

import "github.com/labnet/testorders/api"

func main() {
	api.MainLoop()
}
