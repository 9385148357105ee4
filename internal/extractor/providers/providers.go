// Package providers registers the built-in remote extraction providers
// with the extractor factory.
package providers

import (
	"sync"

	"sva/internal/config"
	"sva/internal/extractor"
	"sva/internal/extractor/claude"
	"sva/internal/extractor/edge"
	"sva/internal/extractor/gemini"
	"sva/internal/extractor/openai"
	"sva/internal/port"
)

// Names lists the provider names accepted in SVA_EXTRACTOR_*_PROVIDER.
var Names = []string{"openai", "claude", "gemini", "edge"}

var once sync.Once

// Register makes every built-in provider selectable by name. Safe to call more than once.
func Register() {
	once.Do(func() {
		extractor.RegisterProvider("openai", func(cfg *config.ProviderConfig) (port.RemoteExtractor, error) {
			return openai.NewExtractor(cfg), nil
		})
		extractor.RegisterProvider("claude", func(cfg *config.ProviderConfig) (port.RemoteExtractor, error) {
			return claude.NewExtractor(cfg), nil
		})
		extractor.RegisterProvider("gemini", func(cfg *config.ProviderConfig) (port.RemoteExtractor, error) {
			return gemini.NewExtractor(cfg), nil
		})
		extractor.RegisterProvider("edge", func(cfg *config.ProviderConfig) (port.RemoteExtractor, error) {
			if cfg.Endpoint == "" {
				return nil, extractor.NewError(extractor.KindConfig, "edge", "edge provider requires an endpoint", nil)
			}
			return edge.NewExtractor(cfg), nil
		})
	})
}
