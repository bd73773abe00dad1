package service

import (
	"regexp"
	"strings"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
)

const tickerSigil = "$"

// tickerPattern matches a "$" followed by at least two ASCII letters ending at
// a word boundary. Any dollar-prefixed word matches, crypto or not.
var tickerPattern = regexp.MustCompile(`\$\b[A-Za-z]{2,}\b`)

// NormalizeToken strips the leading "$" sigils and uppercases the rest. Bare
// values are returned unchanged.
func NormalizeToken(token string) string {
	if strings.HasPrefix(token, tickerSigil) {
		return strings.ToUpper(strings.TrimLeft(token, tickerSigil))
	}
	return token
}

// ExtractTickers returns every ticker-like substring of text in order,
// duplicates included.
func ExtractTickers(text string) []string {
	return tickerPattern.FindAllString(text, -1)
}

// ExtractMentions is ExtractTickers with each match paired with its
// normalized form.
func ExtractMentions(text string) []domain.TickerMention {
	raw := ExtractTickers(text)
	if len(raw) == 0 {
		return nil
	}
	mentions := make([]domain.TickerMention, 0, len(raw))
	for _, r := range raw {
		mentions = append(mentions, domain.TickerMention{Raw: r, Normalized: NormalizeToken(r)})
	}
	return mentions
}

// DistinctMentions drops mentions whose normalized form was already seen,
// keeping the order of first appearance.
func DistinctMentions(mentions []domain.TickerMention) []domain.TickerMention {
	seen := make(map[string]struct{}, len(mentions))
	var out []domain.TickerMention
	for _, m := range mentions {
		if _, ok := seen[m.Normalized]; ok {
			continue
		}
		seen[m.Normalized] = struct{}{}
		out = append(out, m)
	}
	return out
}

// FilterPostsWithTickers keeps the posts that mention at least one ticker.
func FilterPostsWithTickers(posts []domain.Post) []domain.PostWithTickers {
	var out []domain.PostWithTickers
	for _, p := range posts {
		mentions := ExtractMentions(p.Text)
		if len(mentions) == 0 {
			continue
		}
		tickers := make([]string, len(mentions))
		for i, m := range mentions {
			tickers[i] = m.Raw
		}
		out = append(out, domain.PostWithTickers{Post: p, Tickers: tickers, Mentions: mentions})
	}
	return out
}
