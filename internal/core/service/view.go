package service

import (
	"sort"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
)

// DataSourceLabel labels the trailing link back to the pair page.
const DataSourceLabel = "DexScreener"

// BuildTokenView assembles the canonical token view from the dominant group
// and its representative pair.
func BuildTokenView(group *domain.TokenGroup, pair *domain.RawPair) *domain.TokenData {
	view := &domain.TokenData{
		Name:         group.Name,
		Symbol:       group.Symbol,
		Links:        buildLinks(pair),
		PairAddress:  pair.PairAddress,
		PriceUSD:     pair.PriceUSD,
		MarketCapUSD: copyFloat(pair.MarketCap),
		Pairs:        simplifyPairs(group.Pairs),
		Volumes:      pair.Volume,
		PriceChanges: pair.PriceChange,
	}
	if pair.Info != nil {
		view.Logo = optionalString(pair.Info.ImageURL)
		view.Header = optionalString(pair.Info.Header)
		view.OpenGraph = optionalString(pair.Info.OpenGraph)
	}
	return view
}

// buildLinks lists websites then socials, followed by a link to the pair page
// when at least one external link exists.
func buildLinks(pair *domain.RawPair) []domain.TokenLink {
	links := make([]domain.TokenLink, 0)
	if pair.Info != nil {
		for _, w := range pair.Info.Websites {
			links = append(links, domain.TokenLink{Label: w.Label, URL: w.URL})
		}
		for _, s := range pair.Info.Socials {
			links = append(links, domain.TokenLink{Label: s.Type, URL: s.URL})
		}
	}
	if len(links) > 0 {
		links = append(links, domain.TokenLink{Label: DataSourceLabel, URL: pair.URL})
	}
	return links
}

// simplifyPairs projects pairs, sorts them by liquidity descending and keeps
// the most liquid pair per symbol.
func simplifyPairs(pairs []domain.RawPair) []domain.SimplifiedPair {
	simplified := make([]domain.SimplifiedPair, 0, len(pairs))
	for i := range pairs {
		p := &pairs[i]
		liq, _ := p.LiquidityUSD()
		simplified = append(simplified, domain.SimplifiedPair{
			Label:         p.BaseToken.Name + "/" + p.QuoteToken.Name,
			Symbol:        p.BaseToken.Symbol + "/" + p.QuoteToken.Symbol,
			ChainID:       p.ChainID,
			DexID:         p.DexID,
			URL:           p.URL,
			PairAddress:   p.PairAddress,
			PriceUSD:      p.PriceUSD,
			LiquidityUSD:  liq,
			Transactions:  p.Txns,
			Volumes:       p.Volume,
			PriceChanges:  p.PriceChange,
			FDV:           copyFloat(p.FDV),
			MarketCap:     copyFloat(p.MarketCap),
			PairCreatedAt: p.PairCreatedAt,
		})
	}

	sort.SliceStable(simplified, func(i, j int) bool {
		return simplified[i].LiquidityUSD > simplified[j].LiquidityUSD
	})

	seen := make(map[string]struct{}, len(simplified))
	out := simplified[:0]
	for _, sp := range simplified {
		if _, ok := seen[sp.Symbol]; ok {
			continue
		}
		seen[sp.Symbol] = struct{}{}
		out = append(out, sp)
	}
	return out
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
