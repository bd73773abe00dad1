package agent

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrivateKey(t *testing.T) string {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return hexutil.Encode(crypto.FromECDSA(key))
}

func sessionToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "agent",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("network-secret"))
	require.NoError(t, err)
	return signed
}

// recoverAddress returns the signer of an EIP-191 signature.
func recoverAddress(t *testing.T, message, signature string) string {
	t.Helper()
	sig, err := hexutil.Decode(signature)
	require.NoError(t, err)
	require.Len(t, sig, 65)
	sig[64] -= 27

	pub, err := crypto.SigToPub(hashMessage([]byte(message)), sig)
	require.NoError(t, err)
	return crypto.PubkeyToAddress(*pub).Hex()
}

func TestNewAuthenticator(t *testing.T) {
	_, err := NewAuthenticator("not-a-key")
	require.Error(t, err)

	a, err := NewAuthenticator(testPrivateKey(t))
	require.NoError(t, err)
	assert.Len(t, a.Address(), 42)
}

func TestAuthenticator_SignChallenge(t *testing.T) {
	a, err := NewAuthenticator(testPrivateKey(t))
	require.NoError(t, err)

	signature, err := a.SignChallenge("challenge-123")
	require.NoError(t, err)

	sig, err := hexutil.Decode(signature)
	require.NoError(t, err)
	assert.Contains(t, []byte{27, 28}, sig[64])
	assert.Equal(t, a.Address(), recoverAddress(t, "challenge-123", signature))
}

func TestSessionExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)

	got, err := SessionExpiry(sessionToken(t, exp))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	_, err = SessionExpiry("opaque-token")
	assert.Error(t, err)
}

func TestAuthenticator_Session(t *testing.T) {
	a, err := NewAuthenticator(testPrivateKey(t))
	require.NoError(t, err)

	_, ok := a.Session()
	assert.False(t, ok)

	valid := sessionToken(t, time.Now().Add(time.Hour))
	a.SetSession(valid)
	token, ok := a.Session()
	assert.True(t, ok)
	assert.Equal(t, valid, token)

	a.SetSession(sessionToken(t, time.Now().Add(-time.Minute)))
	_, ok = a.Session()
	assert.False(t, ok)

	a.SetSession("opaque-token")
	token, ok = a.Session()
	assert.True(t, ok)
	assert.Equal(t, "opaque-token", token)
	assert.True(t, a.SessionExpiry().IsZero())

	a.ClearSession()
	_, ok = a.Session()
	assert.False(t, ok)
}
