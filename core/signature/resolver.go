package signature

import (
	"context"
	"regexp"

	"github.com/AvaProtocol/txdecode/metrics"
	"github.com/AvaProtocol/txdecode/model"
	"github.com/AvaProtocol/txdecode/pkg/logger"
)

var selectorPattern = regexp.MustCompile(`^0x[0-9a-f]{8}$`)

// Source lists candidate text signatures for a selector.
type Source interface {
	Lookup(ctx context.Context, selector string) ([]string, error)
}

// Resolver turns a selector into one text signature, consulting the cache
// before the registry.
type Resolver struct {
	source  Source
	cache   *Cache
	logger  logger.Logger
	metrics metrics.DecodeMetrics
}

func NewResolver(source Source, cache *Cache, log logger.Logger, m metrics.DecodeMetrics) *Resolver {
	return &Resolver{
		source:  source,
		cache:   cache,
		logger:  logger.EnsureLogger(log),
		metrics: metrics.EnsureMetrics(m),
	}
}

// ResolveSignature returns the text signature for selector (0x plus 8 hex
// digits). When the registry knows several signatures for the same selector
// the last one listed wins. This is a heuristic, but a deterministic one.
func (r *Resolver) ResolveSignature(ctx context.Context, selector string) (string, error) {
	selector = normalizeSelector(selector)
	if !selectorPattern.MatchString(selector) {
		return "", model.NewError(model.DecodeError, nil, "invalid selector %q", selector)
	}

	if sig, ok := r.cache.Get(selector); ok {
		r.metrics.IncSignatureLookup("hit")
		r.logger.Debug("signature cache hit", "selector", selector, "signature", sig)
		return sig, nil
	}
	r.metrics.IncSignatureLookup("miss")

	candidates, err := r.source.Lookup(ctx, selector)
	if err != nil {
		r.metrics.IncSignatureLookup("error")
		return "", err
	}

	if len(candidates) == 0 {
		r.metrics.IncSignatureLookup("not_found")
		return "", model.NewError(model.SignatureNotFoundError, nil, "no signature registered for selector %s", selector)
	}

	chosen := candidates[len(candidates)-1]
	if len(candidates) > 1 {
		r.logger.Info("selector has colliding signatures, using the last registered",
			"selector", selector,
			"candidates", len(candidates),
			"chosen", chosen)
	}

	stored, err := r.cache.PutIfAbsent(selector, chosen)
	if err != nil {
		// the lookup itself succeeded; a cache write failure only costs a refetch later
		r.logger.Warn("cannot cache signature", "selector", selector, "error", err)
		return chosen, nil
	}

	return stored, nil
}
