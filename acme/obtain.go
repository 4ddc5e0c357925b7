package acme

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/go-acme/lego-crt/certcrypto"
)

// defaultPollInterval is the spec's default wait between challenge
// polls (spec §4.7).
const defaultPollInterval = 60 * time.Second

// Options configures a GetCertificate run. All fields are optional;
// withDefaults fills in the spec's defaults.
type Options struct {
	// DirectoryURL is the CA directory to discover. Defaults to
	// LetsEncryptDirectoryURL.
	DirectoryURL string
	// Solver picks and satisfies challenges. Defaults to the built-in
	// DNS-01 solver registered by challenge/dns01.
	Solver Solver
	// Transport performs the HTTP GET/POST the core never does itself.
	// Defaults to NewHTTPTransport(nil).
	Transport Transport
	// Contact is an optional list of "mailto:"-prefixed contact URIs
	// sent with registration.
	Contact []string
	// PollBackOff drives the wait between challenge-status polls.
	// Defaults to an unbounded constant 60-second backoff, per spec
	// §4.7. Tests typically substitute backoff.NewConstantBackOff(0).
	PollBackOff backoff.BackOff
	// Sleep performs the actual wait once PollBackOff has decided how
	// long it should be. Defaults to time.Sleep; tests substitute a
	// no-op to assert on call count without waiting in real time.
	Sleep func(time.Duration)
	// MaxPollAttempts bounds how many times a single challenge is
	// polled before giving up with ChallengeRejected. Zero means no
	// limit — the spec leaves the default unspecified beyond requiring
	// it be exposed for tests (§4.9 Open Questions).
	MaxPollAttempts int
}

func (o *Options) withDefaults() *Options {
	out := *o
	if out.DirectoryURL == "" {
		out.DirectoryURL = LetsEncryptDirectoryURL
	}
	if out.Transport == nil {
		out.Transport = NewHTTPTransport(nil)
	}
	if out.Solver == nil {
		out.Solver = defaultSolver()
	}
	if out.PollBackOff == nil {
		out.PollBackOff = backoff.NewConstantBackOff(defaultPollInterval)
	}
	if out.Sleep == nil {
		out.Sleep = time.Sleep
	}
	return &out
}

// defaultSolver is overridden at init time by challenge/dns01, which
// registers the built-in DNS-01 prompt solver as the package default;
// this keeps acme free of an import-cycle-forcing dependency on any
// concrete solver package.
var defaultSolver = func() Solver {
	return nopSolver{}
}

// SetDefaultSolver lets a challenge package register itself as the
// solver GetCertificate falls back to when Options.Solver is nil.
func SetDefaultSolver(factory func() Solver) {
	defaultSolver = factory
}

// nopSolver is used only if nothing registered a default; any Select
// it's handed returns false, surfacing as NoSupportedChallenge rather
// than a nil-pointer panic.
type nopSolver struct{}

func (nopSolver) Name() string                            { return "" }
func (nopSolver) Select(RawChallenge) bool                 { return false }
func (nopSolver) Solve(string, RawChallenge, string) error { return nil }

// GetCertificate drives the full ACME v1-style issuance handshake
// described in spec §4.7 and returns the issued certificate as PEM.
// accountKeyPEM must contain exactly one RSA private key; csrPEM must
// contain exactly one certificate signing request. opts may be nil to
// take every default.
func GetCertificate(accountKeyPEM, csrPEM []byte, opts *Options) ([]byte, error) {
	if opts == nil {
		opts = &Options{}
	}
	o := opts.withDefaults()

	key, err := certcrypto.ParseRSAPrivateKey(accountKeyPEM)
	if err != nil {
		return nil, errBadKey(err)
	}
	csr, err := certcrypto.ParseCSR(csrPEM)
	if err != nil {
		return nil, errBadCSR(err)
	}
	domains := certcrypto.CSRDomains(csr)
	if len(domains) == 0 {
		return nil, errBadCSR(nil)
	}

	sess, err := newSession(o.Transport, key, o.DirectoryURL)
	if err != nil {
		return nil, err
	}

	accountURL, termsURL, err := register(sess, o.Contact)
	if err != nil {
		return nil, err
	}
	if accountURL != "" && termsURL != "" {
		// An existing account (409) or a fresh one with no terms link
		// skips straight to authorization.
		if err := acceptTerms(sess, accountURL, termsURL); err != nil {
			return nil, err
		}
	}

	for _, domain := range domains {
		if err := authorizeDomain(sess, o, domain); err != nil {
			return nil, err
		}
	}

	der, err := requestCertificate(sess, csr)
	if err != nil {
		return nil, err
	}
	pem, err := certcrypto.CertDERToPEM(der)
	if err != nil {
		return nil, errBadCert(err)
	}
	return pem, nil
}

type registrationRequest struct {
	Resource  string   `json:"resource"`
	Contact   []string `json:"contact,omitempty"`
	Agreement string   `json:"agreement,omitempty"`
}

// register performs the new-reg POST. It returns the account URL and
// terms-of-service URL when the CA created a fresh account and offered
// terms to accept; both are "" (with no error) for an existing account
// (409) or a fresh account with no terms link.
func register(sess *session, contact []string) (accountURL, termsURL string, err error) {
	payload, err := json.Marshal(registrationRequest{Resource: "new-reg", Contact: contact})
	if err != nil {
		return "", "", err
	}

	status, headers, body, err := sess.post("new-reg", sess.dir.NewRegURL, payload)
	if err != nil {
		return "", "", err
	}

	switch status {
	case 201:
		logf("acme: registered new account")
		terms := linkHeader(headers, "terms-of-service")
		if terms == "" {
			return "", "", nil
		}
		return headers.Get("Location"), terms, nil
	case 409:
		logf("acme: account already registered")
		return "", "", nil
	default:
		return "", "", errUnexpectedStatus("new-reg", status, body)
	}
}

// acceptTerms POSTs the agreement to the account URL, naming the terms
// URI the CA offered on registration.
func acceptTerms(sess *session, accountURL, termsURL string) error {
	payload, err := json.Marshal(registrationRequest{Resource: "reg", Agreement: termsURL})
	if err != nil {
		return err
	}
	status, _, body, err := sess.post("reg", accountURL, payload)
	if err != nil {
		return err
	}
	if status != 202 && status != 409 {
		return errUnexpectedStatus("reg", status, body)
	}
	return nil
}

type authzRequest struct {
	Resource   string          `json:"resource"`
	Identifier identifierField `json:"identifier"`
}

type identifierField struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type challengeAck struct {
	Resource         string `json:"resource"`
	Type             string `json:"type"`
	KeyAuthorization string `json:"keyAuthorization"`
}

// authorizeDomain runs the per-domain sub-flow: new-authz, solver
// selection, solve, challenge acknowledgement, then polling until the
// challenge (and therefore the domain) is valid.
func authorizeDomain(sess *session, o *Options, domain string) error {
	payload, err := json.Marshal(authzRequest{
		Resource:   "new-authz",
		Identifier: identifierField{Type: "dns", Value: domain},
	})
	if err != nil {
		return err
	}

	status, _, body, err := sess.post("new-authz", sess.dir.NewAuthzURL, payload)
	if err != nil {
		return err
	}
	if status != 201 {
		return errUnexpectedStatus("new-authz", status, body)
	}

	var authz rawAuthorization
	if err := json.Unmarshal(body, &authz); err != nil {
		return errMalformedJSON("new-authz", err)
	}

	chal, ok := selectChallenge(o.Solver, authz.Challenges)
	if !ok {
		return errNoSupportedChallenge(domain)
	}
	if chal.Token == "" || chal.URI == "" {
		return errMalformedJSON("new-authz", nil)
	}

	keyAuth := KeyAuthorization(chal.Token, sess.thumbprint())
	if err := o.Solver.Solve(domain, chal, keyAuth); err != nil {
		return errSolverFailed(domain, err)
	}

	ackPayload, err := json.Marshal(challengeAck{
		Resource:         "challenge",
		Type:             chal.Type,
		KeyAuthorization: keyAuth,
	})
	if err != nil {
		return err
	}
	// Per spec §4.7/§9: the response code to the challenge
	// acknowledgement POST is not inspected; only polling decides
	// success or failure.
	if _, _, _, err := sess.post("challenge", chal.URI, ackPayload); err != nil {
		return err
	}

	return pollChallenge(sess, o, domain, chal.URI)
}

func pollChallenge(sess *session, o *Options, domain, uri string) error {
	bo := o.PollBackOff
	attempts := 0
	for {
		status, _, body, err := sess.transport.Get(uri)
		if err != nil {
			return err
		}
		// Spec §4.7 inspects only the body's status field; no single
		// poll response code is whitelisted, so any 2xx is accepted.
		if status < 200 || status >= 300 {
			return errUnexpectedStatus("challenge-poll", status, body)
		}

		var resp struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			return errMalformedJSON("challenge-poll", err)
		}

		switch resp.Status {
		case "valid":
			logf("acme: %s authorized", domain)
			return nil
		case "", "pending":
			// continue polling below
		default:
			return errChallengeRejected(domain, resp.Status)
		}

		attempts++
		if o.MaxPollAttempts > 0 && attempts >= o.MaxPollAttempts {
			return errChallengeRejected(domain, "pending (poll attempts exhausted)")
		}

		wait := bo.NextBackOff()
		if wait == backoff.Stop {
			return errChallengeRejected(domain, "pending (backoff exhausted)")
		}
		logf("acme: %s still pending, waiting %s before re-polling", domain, wait)
		o.Sleep(wait)
	}
}

type certRequest struct {
	Resource string `json:"resource"`
	CSR      string `json:"csr"`
}

// requestCertificate performs the final new-cert POST, expecting 201
// with the DER-encoded certificate as the response body.
func requestCertificate(sess *session, csr *x509.CertificateRequest) ([]byte, error) {
	payload, err := json.Marshal(certRequest{
		Resource: "new-cert",
		CSR:      base64.RawURLEncoding.EncodeToString(certcrypto.CSRToDER(csr)),
	})
	if err != nil {
		return nil, err
	}

	status, _, body, err := sess.post("new-cert", sess.dir.NewCertURL, payload)
	if err != nil {
		return nil, err
	}
	if status != 201 {
		return nil, errUnexpectedStatus("new-cert", status, body)
	}
	if len(body) == 0 {
		return nil, errBadCert(nil)
	}
	return body, nil
}
