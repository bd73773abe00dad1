package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/TeneoProtocolAI/defai-agent/internal/core/domain"
)

func f64(v float64) *float64 { return &v }

// pair builds a pair that passes the liquidity and volume filter.
func pair(name, symbol, quote string, liquidity, marketCap float64) domain.RawPair {
	return domain.RawPair{
		ChainID:     "solana",
		DexID:       "raydium",
		URL:         "https://dexscreener.com/solana/" + name + quote,
		PairAddress: name + "-" + quote,
		BaseToken:   domain.Token{Name: name, Symbol: symbol},
		QuoteToken:  domain.Token{Name: quote, Symbol: quote},
		PriceUSD:    "1.00",
		Volume:      domain.Volume{H24: f64(50_000)},
		Liquidity:   &domain.Liquidity{USD: f64(liquidity)},
		MarketCap:   f64(marketCap),
	}
}

func withInfo(p domain.RawPair, info *domain.Info) domain.RawPair {
	p.Info = info
	return p
}

type fakePairSource struct {
	mu      sync.Mutex
	results map[string]*domain.SearchResult
	err     error
	calls   []string
}

func (f *fakePairSource) Search(_ context.Context, query string) (*domain.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

type fakeResolver struct {
	data  map[string]*domain.TokenData
	errs  map[string]error
	calls []string
}

func (f *fakeResolver) FindTokenBySymbol(_ context.Context, symbol string) (*domain.TokenData, error) {
	f.calls = append(f.calls, symbol)
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	if d, ok := f.data[symbol]; ok {
		return d, nil
	}
	return nil, &domain.NotFoundError{Query: symbol, Reason: "no valid groups"}
}

type fakeSummarizer struct {
	summary string
	err     error
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ *domain.TokenData) (string, error) {
	return f.summary, f.err
}

type fakeSocial struct {
	userIDs map[string]string
	posts   map[string][]domain.Post
	filters domain.PostFilters
	created []string
	err     error
}

func (f *fakeSocial) ResolveUsername(_ context.Context, username string) (string, error) {
	if id, ok := f.userIDs[username]; ok {
		return id, nil
	}
	return "", errors.New("user not found")
}

func (f *fakeSocial) ListUserPosts(_ context.Context, userID string, filters domain.PostFilters) ([]domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.filters = filters
	return f.posts[userID], nil
}

func (f *fakeSocial) CreatePost(_ context.Context, text string) (*domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, text)
	return &domain.Post{ID: "999", Text: text}, nil
}

type memorySink struct {
	files  map[string][]byte
	putErr map[string]error
}

func newMemorySink(existing ...string) *memorySink {
	s := &memorySink{files: make(map[string][]byte), putErr: make(map[string]error)}
	for _, p := range existing {
		s.files[p] = []byte("{}")
	}
	return s
}

func (s *memorySink) List(_ context.Context) ([]string, error) {
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *memorySink) Put(_ context.Context, path string, content []byte) error {
	if err, ok := s.putErr[path]; ok {
		return err
	}
	s.files[path] = content
	return nil
}
