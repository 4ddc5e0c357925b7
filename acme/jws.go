package acme

import (
	"crypto/rsa"

	jose "github.com/go-jose/go-jose/v3"
)

// jws builds the flattened JWS envelope required by every authenticated
// POST: protected header carrying alg=RS256, an embedded jwk, and the
// current nonce; base64url payload; base64url signature. The heavy
// lifting (canonicalizing the protected header, RS256 signing) is
// delegated to go-jose, the same library the teacher's own jws.go
// reaches for.
type jws struct {
	key *rsa.PrivateKey
}

// staticNonce hands a single fixed value to go-jose's NonceSource
// protocol; the session supplies a fresh one on every call.
type staticNonce string

func (n staticNonce) Nonce() (string, error) { return string(n), nil }

// encode signs payload, embeds the account's public key, and stamps the
// given nonce into the protected header. The returned bytes are the
// flattened JSON serialization: {"protected":...,"payload":...,"signature":...}.
func (j *jws) encode(payload []byte, nonce string) ([]byte, error) {
	opts := &jose.SignerOptions{
		NonceSource: staticNonce(nonce),
		EmbedJWK:    true,
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: j.key}, opts)
	if err != nil {
		return nil, err
	}
	sig, err := signer.Sign(payload)
	if err != nil {
		return nil, err
	}
	return []byte(sig.FullSerialize()), nil
}
