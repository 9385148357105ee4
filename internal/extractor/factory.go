package extractor

import (
	"context"
	"fmt"

	"sva/internal/config"
	"sva/internal/port"
)

// ProviderFactory is a function that creates a RemoteExtractor from a provider config.
type ProviderFactory func(cfg *config.ProviderConfig) (port.RemoteExtractor, error)

// registry of provider factories, populated explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewExtractor creates a RemoteExtractor from a provider config using the registered factory.
func NewExtractor(cfg *config.ProviderConfig) (port.RemoteExtractor, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, NewError(KindConfig, cfg.Provider, fmt.Sprintf("unknown extraction provider: %s", cfg.Provider), nil)
	}
	return factory(cfg)
}

// NewFromConfig builds the remote extractor chain: the primary provider,
// wrapped in a FallbackExtractor when a secondary is configured. With no
// provider configured it returns an extractor that fails every call with a
// configuration error, so local extraction keeps working.
func NewFromConfig(cfg *config.ExtractorConfig) (port.RemoteExtractor, error) {
	primaryCfg := cfg.PrimaryConfig()
	if primaryCfg == nil {
		return Unconfigured{}, nil
	}
	primary, err := NewExtractor(primaryCfg)
	if err != nil {
		return nil, fmt.Errorf("creating primary extractor: %w", err)
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}
	secondary, err := NewExtractor(secondaryCfg)
	if err != nil {
		return nil, fmt.Errorf("creating secondary extractor: %w", err)
	}
	return NewFallbackExtractor(
		[]port.RemoteExtractor{primary, secondary},
		[]string{primaryCfg.Provider, secondaryCfg.Provider},
	), nil
}

// Unconfigured is the RemoteExtractor used when no provider is set up.
type Unconfigured struct{}

func (Unconfigured) Extract(context.Context, port.RemoteInput) (*port.RemoteOutput, error) {
	return nil, NewError(KindConfig, "", "no remote extraction provider configured", nil)
}
