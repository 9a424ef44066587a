package main

import (
	"os"

	"github.com/tendjournal/tend/journalservice"
)

func main() {
	if err := journalservice.Run(); err != nil {
		os.Exit(1)
	}
}
