package statsprovider

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/gamelog"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
)

var ErrNoProviders = crerr.New("no stats providers configured")

// Chain tries providers in order and returns the first successful response.
type Chain struct {
	providers []gamelog.Provider
	logger    *logging.Logger
}

func NewChain(logger *logging.Logger, providers ...gamelog.Provider) *Chain {
	if logger == nil {
		logger = logging.Default()
	}
	return &Chain{
		providers: providers,
		logger:    logger.Named("statsprovider"),
	}
}

func (c *Chain) Name() string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *Chain) FetchGameLog(ctx context.Context, playerID, season string) ([]gamelog.RawEntry, error) {
	if len(c.providers) == 0 {
		return nil, ErrNoProviders
	}

	var errs error
	for i, provider := range c.providers {
		rows, err := provider.FetchGameLog(ctx, playerID, season)
		if err == nil {
			if i > 0 {
				c.logger.InfoContext(ctx, "game log served by fallback provider", "provider", provider.Name(), "player_id", playerID)
			}
			return rows, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		errs = stderrors.Join(errs, crerr.Wrapf(err, "provider %s", provider.Name()))
		if i < len(c.providers)-1 {
			c.logger.DebugContext(ctx, "stats provider failed, trying next", "provider", provider.Name(), "player_id", playerID, "error", err)
		}
	}
	return nil, errs
}

// Build assembles the chain in the order of names. Every name needs a config.
func Build(names []string, configs map[string]ClientConfig, logger *logging.Logger) (*Chain, error) {
	providers := make([]gamelog.Provider, 0, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		cfg, ok := configs[name]
		if !ok {
			return nil, fmt.Errorf("no configuration for stats provider %q", name)
		}
		cfg.Name = name
		if cfg.Logger == nil {
			cfg.Logger = logger
		}
		client, err := NewClient(cfg)
		if err != nil {
			return nil, err
		}

		switch name {
		case PrimaryName:
			providers = append(providers, NewPrimaryProvider(client))
		case FallbackName:
			providers = append(providers, NewFallbackProvider(client))
		default:
			return nil, fmt.Errorf("unknown stats provider %q", name)
		}
	}
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	return NewChain(logger, providers...), nil
}
