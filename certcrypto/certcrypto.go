// Package certcrypto is the crypto adapter spec §4.1 describes as an
// external collaborator: RSA key parsing, RS256 signing, SHA-256, and
// X.509 CSR/certificate parsing and PEM conversion. It is kept as its
// own package, as the teacher's lego module does, so the acme package
// does no X.509 parsing or encoding itself (it only refers to the
// parsed CSR type).
package certcrypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
)

// ParseRSAPrivateKey parses a PEM block containing exactly one RSA
// private key (PKCS#1 or PKCS#8). Any other count or key type is a
// BadKey condition.
func ParseRSAPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	var found *rsa.PrivateKey
	rest := pemBytes
	count := 0
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		key, err := parseRSAKeyBlock(block)
		if err != nil {
			continue
		}
		count++
		found = key
	}
	if count != 1 {
		return nil, errors.New("certcrypto: PEM must contain exactly one RSA private key")
	}
	return found, nil
}

func parseRSAKeyBlock(block *pem.Block) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("certcrypto: not an RSA key")
	}
	return rsaKey, nil
}

// SignRS256 signs data with RS256: PKCS#1 v1.5 over the SHA-256 digest.
func SignRS256(key *rsa.PrivateKey, data []byte) ([]byte, error) {
	digest := sha256.Sum256(data)
	return rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
}

// SHA256 returns the SHA-256 digest of data.
func SHA256(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// ParseCSR parses a PEM block containing exactly one certificate
// signing request. Any other count is a BadCsr condition.
func ParseCSR(pemBytes []byte) (*x509.CertificateRequest, error) {
	var found *x509.CertificateRequest
	rest := pemBytes
	count := 0
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE REQUEST" && block.Type != "NEW CERTIFICATE REQUEST" {
			continue
		}
		csr, err := x509.ParseCertificateRequest(block.Bytes)
		if err != nil {
			continue
		}
		count++
		found = csr
	}
	if count != 1 {
		return nil, errors.New("certcrypto: PEM must contain exactly one certificate signing request")
	}
	return found, nil
}

// CSRDomains returns the domains a CSR asserts control over: the
// subject CommonName (if non-empty) followed by the SAN DNS names, in
// declaration order, deduplicated.
func CSRDomains(csr *x509.CertificateRequest) []string {
	seen := make(map[string]bool)
	var domains []string
	add := func(d string) {
		if d == "" || seen[d] {
			return
		}
		seen[d] = true
		domains = append(domains, d)
	}
	add(csr.Subject.CommonName)
	for _, d := range csr.DNSNames {
		add(d)
	}
	return domains
}

// CSRToDER re-serializes a parsed CSR back to DER, for the new-cert
// request body.
func CSRToDER(csr *x509.CertificateRequest) []byte {
	return csr.Raw
}

// CertDERToPEM validates that der decodes as an X.509 certificate and
// re-emits it as a single PEM block labeled CERTIFICATE. Unparseable
// DER is a BadCert condition.
func CertDERToPEM(der []byte) ([]byte, error) {
	if _, err := x509.ParseCertificate(der); err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), nil
}
