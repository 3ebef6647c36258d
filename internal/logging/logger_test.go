package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := IntoContext(context.Background(), logger)
	l := FromContext(ctx)
	l.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
}

func TestFromContextWithoutLogger(t *testing.T) {
	l := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}

func TestNewParsesLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New("gincana", "test", "debug").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("gincana", "test", "nonsense").GetLevel())
}
