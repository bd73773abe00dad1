package domain

import "time"

// Token is the base or quote side of a trading pair.
type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

// TxnCount holds buy and sell counts for one rolling window.
type TxnCount struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// Transactions holds transaction counts over the rolling windows.
type Transactions struct {
	M5  *TxnCount `json:"m5,omitempty"`
	H1  *TxnCount `json:"h1,omitempty"`
	H6  *TxnCount `json:"h6,omitempty"`
	H24 *TxnCount `json:"h24,omitempty"`
}

// Volume holds USD trading volume over the rolling windows.
type Volume struct {
	H24 *float64 `json:"h24,omitempty"`
	H6  *float64 `json:"h6,omitempty"`
	H1  *float64 `json:"h1,omitempty"`
	M5  *float64 `json:"m5,omitempty"`
}

// PriceChange holds percentage price change over the rolling windows.
type PriceChange struct {
	M5  *float64 `json:"m5,omitempty"`
	H1  *float64 `json:"h1,omitempty"`
	H6  *float64 `json:"h6,omitempty"`
	H24 *float64 `json:"h24,omitempty"`
}

// Liquidity is the pool liquidity of a pair.
type Liquidity struct {
	USD   *float64 `json:"usd,omitempty"`
	Base  *float64 `json:"base,omitempty"`
	Quote *float64 `json:"quote,omitempty"`
}

// Website is a labelled project website.
type Website struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Social is a social network profile of a project.
type Social struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Info is the optional rich metadata attached to a pair by the data source.
type Info struct {
	ImageURL  string    `json:"imageUrl,omitempty"`
	Header    string    `json:"header,omitempty"`
	OpenGraph string    `json:"openGraph,omitempty"`
	Websites  []Website `json:"websites,omitempty"`
	Socials   []Social  `json:"socials,omitempty"`
}

// RawPair is one trading-pair record as returned by the liquidity-pool data source.
// Optional numeric fields are pointers so that absent is distinct from zero.
type RawPair struct {
	ChainID       string       `json:"chainId"`
	DexID         string       `json:"dexId"`
	URL           string       `json:"url"`
	PairAddress   string       `json:"pairAddress"`
	Labels        []string     `json:"labels,omitempty"`
	BaseToken     Token        `json:"baseToken"`
	QuoteToken    Token        `json:"quoteToken"`
	PriceNative   string       `json:"priceNative"`
	PriceUSD      string       `json:"priceUsd"`
	Txns          Transactions `json:"txns"`
	Volume        Volume       `json:"volume"`
	PriceChange   PriceChange  `json:"priceChange"`
	Liquidity     *Liquidity   `json:"liquidity,omitempty"`
	FDV           *float64     `json:"fdv,omitempty"`
	MarketCap     *float64     `json:"marketCap,omitempty"`
	PairCreatedAt *int64       `json:"pairCreatedAt,omitempty"`
	Info          *Info        `json:"info,omitempty"`
}

// LiquidityUSD returns the USD liquidity and whether it was reported.
func (p *RawPair) LiquidityUSD() (float64, bool) {
	if p.Liquidity == nil || p.Liquidity.USD == nil {
		return 0, false
	}
	return *p.Liquidity.USD, true
}

// Volume24h returns the 24h volume and whether it was reported.
func (p *RawPair) Volume24h() (float64, bool) {
	if p.Volume.H24 == nil {
		return 0, false
	}
	return *p.Volume.H24, true
}

// MarketCapUSD returns the market capitalization, zero when absent.
func (p *RawPair) MarketCapUSD() float64 {
	if p.MarketCap == nil {
		return 0
	}
	return *p.MarketCap
}

// HasInfo reports whether the pair carries rich metadata.
func (p *RawPair) HasInfo() bool {
	return p.Info != nil
}

// SearchResult is the payload of a data source search.
type SearchResult struct {
	SchemaVersion string    `json:"schemaVersion"`
	Pairs         []RawPair `json:"pairs"`
}

// TokenGroup aggregates the pairs that share a normalized base-token name.
type TokenGroup struct {
	Name           string    `json:"name"`
	Symbol         string    `json:"symbol"`
	Pairs          []RawPair `json:"pairs"`
	TotalMarketCap float64   `json:"total_market_cap"`
	TotalVolume24h float64   `json:"total_volume_24h"`
}

// TokenLink is an external link of a token.
type TokenLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SimplifiedPair is the projection of a pair kept in a TokenData.
type SimplifiedPair struct {
	Label         string       `json:"label"`  // "BaseName/QuoteName"
	Symbol        string       `json:"symbol"` // "BASE/QUOTE"
	ChainID       string       `json:"chainId"`
	DexID         string       `json:"dexId"`
	URL           string       `json:"url"`
	PairAddress   string       `json:"pairAddress"`
	PriceUSD      string       `json:"priceUsd"`
	LiquidityUSD  float64      `json:"liquidityUsd"`
	Transactions  Transactions `json:"transactions"`
	Volumes       Volume       `json:"volumes"`
	PriceChanges  PriceChange  `json:"priceChanges"`
	FDV           *float64     `json:"fdv,omitempty"`
	MarketCap     *float64     `json:"marketCap,omitempty"`
	PairCreatedAt *int64       `json:"pairCreatedAt,omitempty"`
}

// TokenData is the canonical view of a token resolved from its pairs.
type TokenData struct {
	Name         string           `json:"name"`
	Symbol       string           `json:"symbol"`
	Logo         *string          `json:"logo"`
	Header       *string          `json:"header"`
	OpenGraph    *string          `json:"openGraph"`
	Links        []TokenLink      `json:"links"`
	PairAddress  string           `json:"pairAddress"`
	PriceUSD     string           `json:"priceUsd"`
	MarketCapUSD *float64         `json:"marketCapUsd,omitempty"`
	Pairs        []SimplifiedPair `json:"pairs"`
	Volumes      Volume           `json:"volumes"`
	PriceChanges PriceChange      `json:"priceChanges"`
}

// Website returns the first link URL, if any.
func (t *TokenData) Website() *string {
	if t == nil || len(t.Links) == 0 {
		return nil
	}
	url := t.Links[0].URL
	return &url
}

// Post is a social-media text item.
type Post struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// TickerMention is a ticker found in text along with its normalized form.
type TickerMention struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

// PostWithTickers is a post together with the tickers it mentions, raw and
// normalized, in extraction order.
type PostWithTickers struct {
	Post     Post            `json:"post"`
	Tickers  []string        `json:"tickers"`
	Mentions []TickerMention `json:"mentions"`
}

// CryptoData is the token information attached to a post mention.
type CryptoData struct {
	Ticker  string     `json:"ticker"`
	Name    string     `json:"name"`
	Website *string    `json:"website"`
	Summary *string    `json:"summary"`
	Data    *TokenData `json:"data"`
}

// MentionArtifact is the output record for one (post, ticker) combination.
type MentionArtifact struct {
	Post    Post        `json:"post"`
	Path    string      `json:"path"`
	Tickers []string    `json:"tickers"`
	Crypto  *CryptoData `json:"crypto"`
}

// PostFilters narrows a user timeline request.
type PostFilters struct {
	MaxResults      int
	StartTime       *time.Time
	EndTime         *time.Time
	SinceID         string
	UntilID         string
	PaginationToken string
}

// TokenLookupInput is the input of the token information capability.
type TokenLookupInput struct {
	Token string `json:"token"`
}

// TokenLookupOutput is the result of a direct token lookup.
type TokenLookupOutput struct {
	Token string     `json:"token"`
	Path  string     `json:"path"`
	Data  *TokenData `json:"data"`
}

// UserMentionsInput is the input of the user mentions capability.
type UserMentionsInput struct {
	UserID          string `json:"user_id,omitempty"`
	Username        string `json:"username,omitempty"`
	MaxResults      int    `json:"max_results,omitempty"`
	StartTime       string `json:"start_time,omitempty"`
	EndTime         string `json:"end_time,omitempty"`
	SinceID         string `json:"since_id,omitempty"`
	UntilID         string `json:"until_id,omitempty"`
	PaginationToken string `json:"pagination_token,omitempty"`
}

// UserMentionsOutput summarizes a user mentions run.
type UserMentionsOutput struct {
	UserID       string   `json:"user_id"`
	PostCount    int      `json:"post_count"`
	Tickers      []string `json:"tickers"`
	CreatedFiles []string `json:"created_files"`
}

// PostMessageInput is the input of the post message capability.
type PostMessageInput struct {
	Message string `json:"message"`
}
