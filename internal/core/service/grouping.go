package service

import (
	"regexp"
	"strings"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
)

const (
	// MinLiquidityUSD and MinVolume24h exclude illiquid or inactive pairs
	// before grouping. Both bounds are exclusive.
	MinLiquidityUSD = 10_000
	MinVolume24h    = 10_000
)

var parenthesizedPattern = regexp.MustCompile(`\s*\(.*?\)\s*`)

// NormalizeName removes parenthesized annotations such as "(Wrapped)" from a
// token name and trims the result.
func NormalizeName(name string) string {
	return strings.TrimSpace(parenthesizedPattern.ReplaceAllString(name, ""))
}

// FilterPairs keeps the pairs whose base symbol equals symbol
// (case-insensitively) and whose liquidity and 24h volume are both reported
// and above the minimums.
func FilterPairs(pairs []domain.RawPair, symbol string) []domain.RawPair {
	var out []domain.RawPair
	for i := range pairs {
		p := &pairs[i]
		if !strings.EqualFold(p.BaseToken.Symbol, symbol) {
			continue
		}
		if liq, ok := p.LiquidityUSD(); !ok || liq <= MinLiquidityUSD {
			continue
		}
		if vol, ok := p.Volume24h(); !ok || vol <= MinVolume24h {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// GroupPairs folds pairs into groups keyed by normalized base-token name.
// Groups keep first-seen order. Missing market cap or volume counts as zero.
func GroupPairs(pairs []domain.RawPair) []domain.TokenGroup {
	if len(pairs) == 0 {
		return nil
	}

	index := make(map[string]int)
	var groups []domain.TokenGroup
	for i := range pairs {
		p := &pairs[i]
		name := NormalizeName(p.BaseToken.Name)

		gi, ok := index[name]
		if !ok {
			gi = len(groups)
			index[name] = gi
			groups = append(groups, domain.TokenGroup{Name: name, Symbol: p.BaseToken.Symbol})
		}

		g := &groups[gi]
		g.Pairs = append(g.Pairs, *p)
		g.TotalMarketCap += p.MarketCapUSD()
		if vol, ok := p.Volume24h(); ok {
			g.TotalVolume24h += vol
		}
	}
	return groups
}

// SelectDominant returns the group with the largest total market cap. Ties go
// to the earliest group.
func SelectDominant(groups []domain.TokenGroup) (*domain.TokenGroup, error) {
	if len(groups) == 0 {
		return nil, &domain.NotFoundError{Reason: "no valid groups"}
	}

	best := 0
	for i := 1; i < len(groups); i++ {
		if groups[i].TotalMarketCap > groups[best].TotalMarketCap {
			best = i
		}
	}

	if len(groups[best].Pairs) == 0 {
		return nil, &domain.NotFoundError{Reason: "dominant group has no pairs"}
	}
	return &groups[best], nil
}

// SelectRepresentative returns the pair with the largest market cap among
// pairs carrying rich metadata, or among all pairs when none does. Ties go to
// the earliest pair.
func SelectRepresentative(pairs []domain.RawPair) (*domain.RawPair, error) {
	if len(pairs) == 0 {
		return nil, &domain.NotFoundError{Reason: "no valid pairs"}
	}
	if p := maxMarketCapPair(pairs, true); p != nil {
		return p, nil
	}
	// No pair was enriched by the data source; images will be null.
	return maxMarketCapPair(pairs, false), nil
}

func maxMarketCapPair(pairs []domain.RawPair, requireInfo bool) *domain.RawPair {
	var best *domain.RawPair
	for i := range pairs {
		p := &pairs[i]
		if requireInfo && !p.HasInfo() {
			continue
		}
		if best == nil || p.MarketCapUSD() > best.MarketCapUSD() {
			best = p
		}
	}
	return best
}
