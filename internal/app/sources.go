package app

import (
	"fmt"
	"time"

	"stocktracker/internal/config"
	"stocktracker/internal/httpx"
	"stocktracker/internal/logger"
	"stocktracker/internal/provider"
	"stocktracker/internal/provider/cache"
	"stocktracker/internal/provider/financego"
	"stocktracker/internal/provider/ratelimit"
	"stocktracker/internal/provider/yahoo"
)

// BuildSource assembles the configured market-data chain: each source is
// rate limited and history-cached, and the non-primary source backs up the
// primary when fallback is enabled.
func BuildSource(cfg config.Config, log logger.Logger) (provider.Source, error) {
	httpClient := httpx.New(cfg.RequestTimeout(), cfg.Provider.UserAgent)

	yh := decorate(yahoo.New(
		yahoo.WithBaseURL(cfg.Provider.YahooEndpoint),
		yahoo.WithHTTPClient(httpClient),
	), cfg)
	fg := decorate(financego.New(), cfg)

	var primary, secondary provider.Source
	switch cfg.Provider.Primary {
	case "yahoo":
		primary, secondary = yh, fg
	case "financego":
		primary, secondary = fg, yh
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Primary)
	}

	if !cfg.Provider.Fallback {
		log.Infof("market data from %s", primary.Name())
		return primary, nil
	}
	src := provider.NewFallback(primary, secondary)
	log.Infof("market data from %s", src.Name())
	return src, nil
}

func decorate(src provider.Source, cfg config.Config) provider.Source {
	if ms := cfg.Provider.MinRequestIntervalMs; ms > 0 {
		src = &ratelimit.MinInterval{Source: src, Interval: time.Duration(ms) * time.Millisecond}
	}
	if ttl := cfg.Provider.HistoryCacheTTLSec; ttl > 0 {
		src = &cache.Source{P: src, TTL: time.Duration(ttl) * time.Second, MaxItems: 64}
	}
	return src
}
