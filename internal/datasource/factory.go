package datasource

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Pilou89/puck-predictor-pro-sub000/internal/config"
)

// NewSlateSource picks the slate source for the configured location:
// http(s) URLs are downloaded, anything else is read from disk.
func NewSlateSource(cfg config.DataSourceConfig, logger *logrus.Logger) (SlateSource, error) {
	location := strings.TrimSpace(cfg.SlatePath)
	if location == "" {
		return nil, fmt.Errorf("slate location is required")
	}

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		httpCfg := DefaultHTTPClientConfig()
		if cfg.TimeoutSeconds > 0 {
			httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		if cfg.MaxRetries > 0 {
			httpCfg.MaxRetries = cfg.MaxRetries
		}
		return NewHTTPSlateSource(NewRateLimitedHTTPClient(httpCfg, logger), location, logger), nil
	}

	return NewFileSlateSource(location, logger), nil
}
