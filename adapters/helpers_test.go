package adapters

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"ozon-extractor/internal/pagetest"
	"ozon-extractor/internal/types"
)

// testConfig returns the default configuration with all pacing disabled
func testConfig() *types.Config {
	config := types.DefaultConfig()
	config.SettleDelay = types.Jitter{}
	config.DismissDelay = types.Jitter{}
	config.ScrollStepDelay = types.Jitter{}
	config.PostScrollDelay = types.Jitter{}
	config.HoverDelay = types.Jitter{}
	config.RenderDelay = types.Jitter{}
	return config
}

func newTestAdapter(t *testing.T) (*OzonAdapter, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewOzonAdapter(testConfig(), logger), hook
}

func newTestPage(config *types.Config) *pagetest.Page {
	return pagetest.New(config.Selectors)
}

func warnings(hook *test.Hook) []string {
	var messages []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			messages = append(messages, entry.Message)
		}
	}
	return messages
}
