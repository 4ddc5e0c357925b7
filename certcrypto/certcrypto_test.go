package certcrypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"
)

func generateRSAKeyPEM(t *testing.T, pkcs8 bool) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	if pkcs8 {
		der, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			t.Fatalf("marshal pkcs8: %v", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	}
	der := x509.MarshalPKCS1PrivateKey(key)
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der})
}

func TestParseRSAPrivateKeyPKCS1(t *testing.T) {
	if _, err := ParseRSAPrivateKey(generateRSAKeyPEM(t, false)); err != nil {
		t.Fatalf("ParseRSAPrivateKey: %v", err)
	}
}

func TestParseRSAPrivateKeyPKCS8(t *testing.T) {
	if _, err := ParseRSAPrivateKey(generateRSAKeyPEM(t, true)); err != nil {
		t.Fatalf("ParseRSAPrivateKey: %v", err)
	}
}

func TestParseRSAPrivateKeyRejectsEmpty(t *testing.T) {
	if _, err := ParseRSAPrivateKey([]byte("not a pem")); err == nil {
		t.Fatal("expected an error for non-PEM input")
	}
}

func TestParseRSAPrivateKeyRejectsMultiple(t *testing.T) {
	both := append(append([]byte{}, generateRSAKeyPEM(t, false)...), generateRSAKeyPEM(t, false)...)
	if _, err := ParseRSAPrivateKey(both); err == nil {
		t.Fatal("expected an error for multiple keys")
	}
}

func generateCSRPEM(t *testing.T, cn string, sans ...string) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.CertificateRequest{
		Subject:  pkix.Name{CommonName: cn},
		DNSNames: sans,
	}
	der, err := x509.CreateCertificateRequest(rand.Reader, tmpl, key)
	if err != nil {
		t.Fatalf("create CSR: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: der})
}

func TestParseCSRAndDomains(t *testing.T) {
	csr, err := ParseCSR(generateCSRPEM(t, "example.com", "example.com", "www.example.com"))
	if err != nil {
		t.Fatalf("ParseCSR: %v", err)
	}
	domains := CSRDomains(csr)
	want := []string{"example.com", "www.example.com"}
	if len(domains) != len(want) {
		t.Fatalf("domains = %v, want %v", domains, want)
	}
	for i := range want {
		if domains[i] != want[i] {
			t.Errorf("domains[%d] = %q, want %q", i, domains[i], want[i])
		}
	}
}

func TestParseCSRRejectsNone(t *testing.T) {
	if _, err := ParseCSR([]byte("not a pem")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestCertDERToPEMRoundTrip(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "example.com"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}

	out, err := CertDERToPEM(der)
	if err != nil {
		t.Fatalf("CertDERToPEM: %v", err)
	}
	block, _ := pem.Decode(out)
	if block == nil || block.Type != "CERTIFICATE" {
		t.Fatalf("expected a CERTIFICATE PEM block, got %v", block)
	}
}

func TestCertDERToPEMRejectsGarbage(t *testing.T) {
	if _, err := CertDERToPEM([]byte("not der")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestSignRS256VerifiesWithStdlib(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	data := []byte("hello")
	sig, err := SignRS256(key, data)
	if err != nil {
		t.Fatalf("SignRS256: %v", err)
	}
	digest := SHA256(data)
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, digest, sig); err != nil {
		t.Errorf("signature did not verify: %v", err)
	}
}
