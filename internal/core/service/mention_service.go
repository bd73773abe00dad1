package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
)

// TokenArtifactPath is the artifact path of a direct token lookup.
func TokenArtifactPath(ticker string) string {
	return fmt.Sprintf("crypto_%s.json", ticker)
}

// MentionArtifactPath is the artifact path of a ticker mentioned in a post.
func MentionArtifactPath(postID, ticker string) string {
	return fmt.Sprintf("tweet_%s_%s.json", postID, ticker)
}

// MentionResolver resolves the tickers mentioned in posts into per-mention
// artifacts.
type MentionResolver struct {
	tokens     domain.TokenResolver
	summarizer domain.Summarizer
}

// NewMentionResolver creates a resolver. summarizer may be nil.
func NewMentionResolver(tokens domain.TokenResolver, summarizer domain.Summarizer) *MentionResolver {
	return &MentionResolver{
		tokens:     tokens,
		summarizer: summarizer,
	}
}

// Resolve produces one artifact per (post, distinct ticker) whose path is not
// in existing. Tickers are resolved one at a time in extraction order; a
// failed or empty resolution is logged and skipped. The only error returned
// is the context's.
func (r *MentionResolver) Resolve(ctx context.Context, posts []domain.Post, existing []string) ([]domain.MentionArtifact, error) {
	done := make(map[string]struct{}, len(existing))
	for _, p := range existing {
		done[p] = struct{}{}
	}

	var artifacts []domain.MentionArtifact
	for _, item := range FilterPostsWithTickers(posts) {
		for _, mention := range DistinctMentions(item.Mentions) {
			if err := ctx.Err(); err != nil {
				return artifacts, err
			}
			ticker := mention.Normalized

			path := MentionArtifactPath(item.Post.ID, ticker)
			if _, ok := done[path]; ok {
				log.Debug().Str("path", path).Msg("artifact already exists, skipping")
				continue
			}

			artifact, ok := r.resolveMention(ctx, item, ticker, path)
			if !ok {
				continue
			}
			done[path] = struct{}{}
			artifacts = append(artifacts, artifact)
		}
	}
	return artifacts, nil
}

func (r *MentionResolver) resolveMention(ctx context.Context, item domain.PostWithTickers, ticker, path string) (domain.MentionArtifact, bool) {
	log.Info().Str("post_id", item.Post.ID).Str("ticker", ticker).Msgf("Retrieve %s informations", ticker)

	data, err := r.tokens.FindTokenBySymbol(ctx, ticker)
	if err != nil {
		event := log.Warn()
		if domain.IsNotFound(err) {
			event = log.Info()
		}
		event.Err(err).Str("post_id", item.Post.ID).Str("ticker", ticker).Msgf("Retrieve %s informations error", ticker)
		return domain.MentionArtifact{}, false
	}
	if data == nil {
		log.Info().Str("post_id", item.Post.ID).Str("ticker", ticker).Msg("no token data")
		return domain.MentionArtifact{}, false
	}

	tickers := make([]string, len(item.Tickers))
	copy(tickers, item.Tickers)

	return domain.MentionArtifact{
		Post:    item.Post,
		Path:    path,
		Tickers: tickers,
		Crypto: &domain.CryptoData{
			Ticker:  ticker,
			Name:    data.Name,
			Website: data.Website(),
			Summary: r.summarize(ctx, ticker, data),
			Data:    data,
		},
	}, true
}

func (r *MentionResolver) summarize(ctx context.Context, ticker string, data *domain.TokenData) *string {
	if r.summarizer == nil {
		return nil
	}
	summary, err := r.summarizer.Summarize(ctx, data)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("token summary failed")
		return nil
	}
	if summary == "" {
		return nil
	}
	return &summary
}
