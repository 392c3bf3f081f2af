// Package main provides the entry point for cachesim, a simulator of an
// inclusive multi-level cache hierarchy shared by several cores.
package main

import (
	"errors"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/tebeka/atexit"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Error loading .env: %v", err)
	}

	atexit.Exit(Execute())
}
