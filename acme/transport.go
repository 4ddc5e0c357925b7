package acme

import (
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Transport is the external HTTP collaborator the core depends on
// (spec §4.4): GET, and POST with a Content-Length set from the body,
// both returning status, headers (queryable case-insensitively, which
// http.Header already gives us), and the raw body.
type Transport interface {
	Get(url string) (status int, headers http.Header, body []byte, err error)
	Post(url string, headers http.Header, body []byte) (status int, respHeaders http.Header, respBody []byte, err error)
}

// httpTransport is the default, net/http-backed Transport. It imposes
// no retry or timeout policy of its own; callers configure those on the
// *http.Client they supply, per spec §5's "Timeouts are not imposed by
// the core".
type httpTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps client (or http.DefaultClient, if nil) as a
// Transport.
func NewHTTPTransport(client *http.Client) Transport {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpTransport{client: client}
}

func (t *httpTransport) Get(url string) (int, http.Header, []byte, error) {
	resp, err := t.client.Get(url)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, err
	}
	return resp.StatusCode, resp.Header, body, nil
}

func (t *httpTransport) Post(url string, headers http.Header, body []byte) (int, http.Header, []byte, error) {
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return 0, nil, nil, err
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	req.ContentLength = int64(len(body))

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, err
	}
	return resp.StatusCode, resp.Header, respBody, nil
}

var linkParamRe = regexp.MustCompile(`(?i)\s*([a-z]+)\s*=\s*"?([^",;]*)"?`)

// linkHeader finds a Link header entry whose rel parameter equals rel
// and returns its URI, or "" if none match. Mirrors the teacher's
// parseLinks, generalized to a single lookup.
func linkHeader(h http.Header, rel string) string {
	for _, raw := range h["Link"] {
		for _, part := range strings.Split(raw, ",") {
			segs := strings.SplitN(strings.TrimSpace(part), ";", 2)
			if len(segs) != 2 {
				continue
			}
			uri := strings.Trim(strings.TrimSpace(segs[0]), "<>")
			for _, m := range linkParamRe.FindAllStringSubmatch(segs[1], -1) {
				if strings.EqualFold(m[1], "rel") && m[2] == rel {
					return uri
				}
			}
		}
	}
	return ""
}
