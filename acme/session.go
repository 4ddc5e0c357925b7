package acme

import (
	"crypto/rsa"
	"log"
	"net/http"
)

// Logger is used to log registration, per-domain authorization and the
// waits between polls; if nil, the standard logger is used. Matches
// the teacher's package-level Logger convention.
var Logger *log.Logger

func logf(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// session is the mutable state a single get_crt run carries: the
// account key, the discovered directory, and the current anti-replay
// nonce. The nonce is the session's exclusively owned mutable field —
// solvers and the JWS encoder only ever borrow it for the duration of
// one authenticated POST.
type session struct {
	transport Transport
	key       *rsa.PrivateKey
	jws       *jws
	dir       Directory
	nonce     string
}

func newSession(t Transport, key *rsa.PrivateKey, directoryURL string) (*session, error) {
	dir, nonce, err := discover(t, directoryURL)
	if err != nil {
		return nil, err
	}
	return &session{
		transport: t,
		key:       key,
		jws:       &jws{key: key},
		dir:       dir,
		nonce:     nonce,
	}, nil
}

// post consumes s.nonce, signs payload with it, issues the request
// against endpoint, and installs the response's Replay-Nonce as the
// session's new nonce before returning. endpoint is only used to tag
// errors (it is not necessarily the literal request URL's last
// segment, e.g. a challenge or authorization URL).
func (s *session) post(endpoint, url string, payload []byte) (int, http.Header, []byte, error) {
	body, err := s.jws.encode(payload, s.nonce)
	if err != nil {
		return 0, nil, nil, err
	}

	status, headers, respBody, err := s.transport.Post(url, nil, body)
	if err != nil {
		return 0, nil, nil, err
	}

	nonce := headers.Get("Replay-Nonce")
	if nonce == "" {
		return 0, nil, nil, errNoNonce(endpoint)
	}
	s.nonce = nonce

	return status, headers, respBody, nil
}

func (s *session) thumbprint() string {
	return thumbprint(&s.key.PublicKey)
}
