package acme

import (
	"encoding/json"
)

// LetsEncryptDirectoryURL is the default production CA directory, used
// by GetCertificate when the caller doesn't supply one.
const LetsEncryptDirectoryURL = "https://acme-v01.api.letsencrypt.org/directory"

// Directory is the CA's endpoint listing, fetched once per session and
// never mutated afterward.
type Directory struct {
	NewAuthzURL string `json:"new-authz"`
	NewRegURL   string `json:"new-reg"`
	NewCertURL  string `json:"new-cert"`
	RevokeURL   string `json:"revoke-cert"`
}

// discover performs the directory GET and returns the parsed endpoints
// plus the first nonce, read off the same response's Replay-Nonce
// header as every subsequent authenticated call.
func discover(t Transport, url string) (Directory, string, error) {
	status, headers, body, err := t.Get(url)
	if err != nil {
		return Directory{}, "", err
	}
	if status != 200 {
		return Directory{}, "", errUnexpectedStatus("directory", status, body)
	}

	var dir Directory
	if err := json.Unmarshal(body, &dir); err != nil {
		return Directory{}, "", errMalformedJSON("directory", err)
	}
	if dir.NewAuthzURL == "" || dir.NewRegURL == "" || dir.NewCertURL == "" || dir.RevokeURL == "" {
		return Directory{}, "", errMalformedJSON("directory", nil)
	}

	nonce := headers.Get("Replay-Nonce")
	if nonce == "" {
		return Directory{}, "", errNoNonce("directory")
	}
	return dir, nonce, nil
}
