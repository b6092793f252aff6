package grants

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/buildsmith/buildsmith/internal/common"
	"github.com/buildsmith/buildsmith/internal/interfaces"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

// Resolver walks the ordered grant store from index 1 and probes each grant
// against the target repository until one is authorized. Grant order is
// meaningful; earlier grants always win.
type Resolver struct {
	source  interfaces.GrantSource
	prober  interfaces.RepoProber
	limiter *rate.Limiter
	max     int
	logger  arbor.ILogger
}

// NewResolver creates a resolver over the grant source. cfg.MaxProbes caps a
// single resolution; cfg.ProbeRate sets the minimum interval between probes,
// an empty or unparsable value meaning unthrottled.
func NewResolver(source interfaces.GrantSource, prober interfaces.RepoProber, cfg *common.ResolverConfig) *Resolver {
	limit := rate.Inf
	if interval, err := time.ParseDuration(cfg.ProbeRate); err == nil && interval > 0 {
		limit = rate.Every(interval)
	}
	return &Resolver{
		source:  source,
		prober:  prober,
		limiter: rate.NewLimiter(limit, 1),
		max:     cfg.MaxProbes,
		logger:  common.GetLogger(),
	}
}

// Resolve scans grants in index order. It returns the first grant whose token
// can read the repository. Exhausting the store without a match returns
// (nil, nil); only context cancellation and store faults are errors.
func (r *Resolver) Resolve(ctx context.Context, owner, repo string) (*interfaces.Resolution, error) {
	var lastErr error
	probes := 0

	for index := 1; r.max <= 0 || index <= r.max; index++ {
		grant, err := r.source.GrantAt(ctx, index)
		if errors.Is(err, interfaces.ErrNoGrant) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("grant lookup failed at index %d: %w", index, err)
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		probes++
		if err := r.prober.ProbeRepo(ctx, grant.AccessToken, owner, repo); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			r.logger.Debug().
				Int("index", index).
				Str("repo", owner+"/"+repo).
				Err(err).
				Msg("Grant probe rejected")
			continue
		}

		r.logger.Info().
			Int("index", index).
			Int("probes", probes).
			Str("repo", owner+"/"+repo).
			Msg("Resolved grant for repository")

		return &interfaces.Resolution{Grant: grant, Probes: probes, LastErr: lastErr}, nil
	}

	r.logger.Warn().
		Int("probes", probes).
		Str("repo", owner+"/"+repo).
		Msg("No grant authorized for repository")

	return nil, nil
}

// Ensure interface compliance
var _ interfaces.CredentialResolver = (*Resolver)(nil)
