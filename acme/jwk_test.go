package acme

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"math/big"
	"testing"
)

// TestThumbprintRFC7638Vector checks against the worked example from
// RFC 7638 appendix A.1.
func TestThumbprintRFC7638Vector(t *testing.T) {
	nBytes, err := base64.RawURLEncoding.DecodeString(
		"0vx7agoebGcQSuuPiLJXZptN9nndrQmbXEps2aiAFbWhM78LhWx4cbbfAAtVT86zwu1RK7aPFFxuhDR1L6tSoc_BJECPebWKRXjBZCiFV4n3oknjhMstn64tZ_2W-5JsGY4Hc5n9yBXArwl93lqt7_RN5w6Cf0h4QyQ5v-65YGjQR0_FDW2QvzqY368QQMicAtaSqzs8KJZgnYb9c7d0zgdAZHzu6qMQvRL5hajrn1n91CbOpbISD08qNLyrdkt-bFTWhAI4vMQFh6WeZu0fM4lFd2NcRwr3XPksINHaQ-G_xBniIqbw0Ls1jF44-csFCur-kEgU8awapJzKnqDKgw")
	if err != nil {
		t.Fatal("bad modulus vector")
	}
	n := new(big.Int).SetBytes(nBytes)

	pub := &rsa.PublicKey{N: n, E: 65537}
	got := thumbprint(pub)
	want := "NzbLsXh8uDCcd-6MNwXF4W_7noWXFZAfHkxZsRGC9Xs"
	if got != want {
		t.Errorf("thumbprint = %q, want %q", got, want)
	}
}

func TestThumbprintStable(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	a := thumbprint(&key.PublicKey)
	b := thumbprint(&key.PublicKey)
	if a != b {
		t.Errorf("thumbprint not stable across calls: %q != %q", a, b)
	}
}
