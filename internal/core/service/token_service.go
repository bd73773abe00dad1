package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
)

// TokenService resolves a ticker to a canonical token view using a pair source.
type TokenService struct {
	source domain.PairSource
}

func NewTokenService(source domain.PairSource) *TokenService {
	return &TokenService{source: source}
}

// FindTokenBySymbol searches the pair source once for symbol and merges the
// matching pairs into one TokenData. It returns a *domain.NotFoundError when
// nothing survives filtering.
func (s *TokenService) FindTokenBySymbol(ctx context.Context, symbol string) (*domain.TokenData, error) {
	result, err := s.source.Search(ctx, symbol)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("pair search failed")
		return nil, fmt.Errorf("failed to search pairs for %s: %w", symbol, err)
	}
	if result == nil || len(result.Pairs) == 0 {
		return nil, &domain.NotFoundError{Query: symbol, Reason: "data source returned no pairs"}
	}

	filtered := FilterPairs(result.Pairs, symbol)
	groups := GroupPairs(filtered)

	log.Debug().
		Str("symbol", symbol).
		Int("pairs", len(result.Pairs)).
		Int("filtered", len(filtered)).
		Int("groups", len(groups)).
		Msg("pairs grouped")

	group, err := SelectDominant(groups)
	if err != nil {
		return nil, withQuery(err, symbol)
	}

	pair, err := SelectRepresentative(group.Pairs)
	if err != nil {
		return nil, withQuery(err, symbol)
	}

	return BuildTokenView(group, pair), nil
}

func withQuery(err error, symbol string) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return &domain.NotFoundError{Query: symbol, Reason: nf.Reason}
	}
	return err
}
