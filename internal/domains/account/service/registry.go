package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"blog-backend/internal/domains/account"
)

// maxSuffixProbe bounds the sequential suffix search: name2..name100.
const maxSuffixProbe = 100

// Registry enforces the soft-unique display-name constraint among
// verified accounts. Uniqueness checks fail open: when the store
// cannot answer, registration proceeding matters more than strict
// uniqueness.
type Registry struct {
	repo account.Repository
	now  func() time.Time
}

func NewRegistry(repo account.Repository) *Registry {
	return &Registry{repo: repo, now: time.Now}
}

// Reserve returns candidate when no verified account (other than
// ownerID) holds it, otherwise the first free suffixed variant
// (name2, name3, ...), otherwise a timestamp-suffixed fallback that is
// accepted without a further check.
func (r *Registry) Reserve(ctx context.Context, candidate, ownerID string) string {
	if candidate == "" {
		return ""
	}

	taken, err := r.repo.DisplayNameExists(ctx, candidate, ownerID)
	if err != nil {
		log.Warn().Err(err).Str("name", candidate).
			Msg("display name check failed, keeping candidate")
		return candidate
	}
	if !taken {
		return candidate
	}
	return r.Generate(ctx, candidate, ownerID)
}

// Generate probes suffixed variants of base sequentially. Each probe's
// check must complete before the next is issued, so the worst case is
// 99 round-trips with a deterministic fallback after them.
func (r *Registry) Generate(ctx context.Context, base, ownerID string) string {
	for i := 2; i <= maxSuffixProbe; i++ {
		candidate := fmt.Sprintf("%s%d", base, i)
		taken, err := r.repo.DisplayNameExists(ctx, candidate, ownerID)
		if err != nil {
			// Fail open on a single probe: take it as available.
			log.Warn().Err(err).Str("name", candidate).
				Msg("display name probe failed, using candidate")
			return candidate
		}
		if !taken {
			return candidate
		}
	}

	// Every probe collided. Disambiguate with the tail of the current
	// unix-millis clock and accept it as statistically unique.
	millis := strconv.FormatInt(r.now().UnixMilli(), 10)
	fallback := fmt.Sprintf("%s_%s", base, millis[len(millis)-6:])
	log.Warn().Str("name", fallback).Msg("display name probes exhausted, using timestamp fallback")
	return fallback
}
