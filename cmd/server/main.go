package main

import "defensoria/internal/app/server"

func main() {
	server.Run()
}
