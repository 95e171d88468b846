package main

import (
	"github.com/joho/godotenv"
	"github.com/tebeka/atexit"
)

func main() {
	// A .env file can preset SDRAMSIM_* variables used as flag defaults.
	_ = godotenv.Load()

	Execute()

	// Exit through atexit so registered flushers, such as the trace
	// recorder, run before the process ends.
	atexit.Exit(0)
}
