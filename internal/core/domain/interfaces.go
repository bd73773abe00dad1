package domain

import "context"

// PairSource is the liquidity-pool data source.
type PairSource interface {
	// Search returns every pair matching the query. One call per resolution;
	// implementations own timeouts and rate limiting.
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// SocialSource is the social-media API.
type SocialSource interface {
	// ResolveUsername returns the user id of a username.
	ResolveUsername(ctx context.Context, username string) (string, error)

	// ListUserPosts returns the latest posts authored by a user.
	ListUserPosts(ctx context.Context, userID string, filters PostFilters) ([]Post, error)

	// CreatePost publishes a post and returns it.
	CreatePost(ctx context.Context, text string) (*Post, error)
}

// ArtifactSink stores JSON artifacts by path.
type ArtifactSink interface {
	// List returns the paths of every stored artifact.
	List(ctx context.Context) ([]string, error)

	// Put stores content at path, replacing any previous content.
	Put(ctx context.Context, path string, content []byte) error
}

// TokenResolver resolves a ticker to its canonical token view.
type TokenResolver interface {
	FindTokenBySymbol(ctx context.Context, symbol string) (*TokenData, error)
}

// Summarizer produces a short description of a token.
type Summarizer interface {
	Summarize(ctx context.Context, token *TokenData) (string, error)
}
