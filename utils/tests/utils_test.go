package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-entity/entity/logger"
)

func TestLogger(t *testing.T) {
	t.Setenv("ENTITY_TEST_LOGGER", "")
	assert.Equal(t, logger.Discard, Logger())

	t.Setenv("ENTITY_LOG_LEVEL", "info")
	for name, want := range map[string]interface{}{
		"zap":             &logger.ZapLogger{},
		"zerolog":         &logger.ZerologLogger{},
		"zerolog-console": &logger.ZerologLogger{},
		"logrus":          &logger.LogrusLogger{},
		"slog":            &logger.SlogLogger{},
	} {
		t.Setenv("ENTITY_TEST_LOGGER", name)
		assert.IsType(t, want, Logger(), name)
	}

	t.Setenv("ENTITY_TEST_LOGGER", "logrus")
	assert.Equal(t, logger.Info, Logger().(*logger.LogrusLogger).LogLevel)
}
