package main

import (
	"log"

	"github.com/Badsnus/qr-studio/cmd/studio"
	"github.com/Badsnus/qr-studio/internal/adapters/config"

	_ "time/tzdata"
)

func main() {
	cfg := config.Get()
	s, err := studio.New(cfg)
	if err != nil {
		log.Panic(err)
	}

	if err = s.Start(); err != nil {
		s.Logger.Fatalf("Export failed: %v", err)
	}
}
