package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"tarkit/logging"
)

func main() {
	logging.SetupLogger(0)
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("tarkit failed")
		os.Exit(1)
	}
}
