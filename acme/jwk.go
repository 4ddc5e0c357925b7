package acme

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

// canonicalJWK returns the canonical JSON form of an RSA public key as
// described in RFC 7638: keys in lexicographic order (e, kty, n), no
// whitespace, integers big-endian unsigned with no leading zero byte,
// base64url without padding.
func canonicalJWK(pub *rsa.PublicKey) []byte {
	e := big.NewInt(int64(pub.E))
	n := pub.N
	return []byte(fmt.Sprintf(`{"e":"%s","kty":"RSA","n":"%s"}`,
		base64.RawURLEncoding.EncodeToString(e.Bytes()),
		base64.RawURLEncoding.EncodeToString(n.Bytes()),
	))
}

// thumbprint computes the RFC 7638 JWK thumbprint of an RSA public key:
// base64url(sha256(canonical_jwk)), unpadded.
func thumbprint(pub *rsa.PublicKey) string {
	sum := sha256.Sum256(canonicalJWK(pub))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
