package agent

import (
	"crypto/ecdsa"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
)

// Authenticator signs network challenges with the agent wallet and keeps the
// session token returned on success
type Authenticator struct {
	privateKey *ecdsa.PrivateKey
	address    string

	mu            sync.RWMutex
	sessionToken  string
	sessionExpiry time.Time
}

// NewAuthenticator creates a new authenticator from a hex private key
func NewAuthenticator(privateKeyHex string) (*Authenticator, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	publicKeyECDSA, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to derive public key")
	}

	return &Authenticator{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*publicKeyECDSA).Hex(),
	}, nil
}

// SignChallenge signs a challenge with the Ethereum signed message prefix
func (a *Authenticator) SignChallenge(challenge string) (string, error) {
	hash := hashMessage([]byte(challenge))

	signature, err := crypto.Sign(hash, a.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign: %w", err)
	}

	// Adjust v value for Ethereum (27/28 instead of 0/1)
	signature[64] += 27

	return hexutil.Encode(signature), nil
}

// Address returns the wallet address
func (a *Authenticator) Address() string {
	return a.address
}

// SetSession stores the session token. The expiry is read from the token's
// exp claim when it is a JWT.
func (a *Authenticator) SetSession(token string) {
	expiry, err := SessionExpiry(token)
	if err != nil {
		expiry = time.Time{}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessionToken = token
	a.sessionExpiry = expiry
}

// ClearSession forgets the session token
func (a *Authenticator) ClearSession() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessionToken = ""
	a.sessionExpiry = time.Time{}
}

// Session returns the session token if it has not expired
func (a *Authenticator) Session() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.sessionToken == "" {
		return "", false
	}
	if !a.sessionExpiry.IsZero() && time.Now().After(a.sessionExpiry) {
		return "", false
	}
	return a.sessionToken, true
}

// SessionExpiry returns the session expiry, zero when unknown
func (a *Authenticator) SessionExpiry() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionExpiry
}

// SessionExpiry reads the exp claim of a session JWT. The signature is not
// verified: the token is only forwarded to the network that issued it.
func SessionExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse session token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}

// hashMessage hashes a message with the Ethereum signed message prefix
func hashMessage(data []byte) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(data))
	return crypto.Keccak256([]byte(prefix), data)
}
