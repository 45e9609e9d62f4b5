package main

import (
	"log"
	"os"

	"pong/server"
)

func main() {
	if err := server.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
