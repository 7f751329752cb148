package testlog

import (
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/deepsix-ml/deepsix/internal/logging"
)

func Start(t *testing.T) {
	t.Helper()
	logging.InitTests()
	log.Debug().Str("test", t.Name()).Msg("start")
}
