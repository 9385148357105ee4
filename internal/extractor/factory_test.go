package extractor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sva/internal/config"
	"sva/internal/extractor"
	"sva/internal/port"
)

// stubExtractor is a minimal RemoteExtractor for testing the factory.
type stubExtractor struct {
	model string
}

func (s *stubExtractor) Extract(_ context.Context, _ port.RemoteInput) (*port.RemoteOutput, error) {
	return &port.RemoteOutput{ModelUsed: s.model}, nil
}

func registerStub() {
	extractor.RegisterProvider("test-provider", func(cfg *config.ProviderConfig) (port.RemoteExtractor, error) {
		return &stubExtractor{model: cfg.DefaultModel}, nil
	})
}

func TestFactory_RegisterAndCreate(t *testing.T) {
	registerStub()

	x, err := extractor.NewExtractor(&config.ProviderConfig{Provider: "test-provider", DefaultModel: "test-model"})

	require.NoError(t, err)
	out, err := x.Extract(context.Background(), port.RemoteInput{})
	require.NoError(t, err)
	assert.Equal(t, "test-model", out.ModelUsed)
}

func TestFactory_UnknownProvider(t *testing.T) {
	x, err := extractor.NewExtractor(&config.ProviderConfig{Provider: "nonexistent-provider-xyz"})

	assert.Nil(t, x)
	assert.Equal(t, extractor.KindConfig, extractor.KindOf(err))
	assert.Contains(t, err.Error(), "unknown extraction provider")
}

func TestNewFromConfig_NoProvider(t *testing.T) {
	x, err := extractor.NewFromConfig(&config.ExtractorConfig{})

	require.NoError(t, err)
	_, err = x.Extract(context.Background(), port.RemoteInput{Text: "x"})
	assert.Equal(t, extractor.KindConfig, extractor.KindOf(err))
}

func TestNewFromConfig_PrimaryOnly(t *testing.T) {
	registerStub()

	x, err := extractor.NewFromConfig(&config.ExtractorConfig{
		Primary: config.ProviderConfig{Provider: "test-provider", DefaultModel: "m1"},
	})

	require.NoError(t, err)
	assert.IsType(t, &stubExtractor{}, x)
}

func TestNewFromConfig_WithSecondary(t *testing.T) {
	registerStub()

	x, err := extractor.NewFromConfig(&config.ExtractorConfig{
		Primary:   config.ProviderConfig{Provider: "test-provider", DefaultModel: "m1"},
		Secondary: config.ProviderConfig{Provider: "test-provider", DefaultModel: "m2"},
	})

	require.NoError(t, err)
	assert.IsType(t, &extractor.FallbackExtractor{}, x)
}

func TestNewFromConfig_UnknownSecondary(t *testing.T) {
	registerStub()

	_, err := extractor.NewFromConfig(&config.ExtractorConfig{
		Primary:   config.ProviderConfig{Provider: "test-provider"},
		Secondary: config.ProviderConfig{Provider: "missing"},
	})

	assert.Error(t, err)
}
