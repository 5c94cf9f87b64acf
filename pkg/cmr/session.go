package cmr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// EarthdataDomain is the host suffix that receives credentials, including across
// the URS login redirect chain.
const EarthdataDomain = "earthdata.nasa.gov"

// Credentials for Earthdata Login. A bearer token takes precedence over username/password.
type Credentials struct {
	Token    string
	Username string
	Password string
}

// Session is an authenticated Earthdata client. Construct it once per process and
// pass it to both the catalog client and the fetcher.
type Session struct {
	creds  Credentials
	client *http.Client
	domain string
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithHTTPClient replaces the underlying client. Its Jar and CheckRedirect are overwritten.
func WithHTTPClient(c *http.Client) SessionOption {
	return func(s *Session) { s.client = c }
}

// WithAuthDomain changes which hosts receive credentials. Used by tests.
func WithAuthDomain(domain string) SessionOption {
	return func(s *Session) { s.domain = domain }
}

// NewSession builds a session for creds. Anonymous sessions are allowed; Earthdata
// will reject protected downloads, but catalog search works without login.
func NewSession(creds Credentials, opts ...SessionOption) (*Session, error) {
	if creds.Token == "" && (creds.Username == "") != (creds.Password == "") {
		return nil, errors.New("earthdata username and password must be given together")
	}
	s := &Session{
		creds:  creds,
		client: &http.Client{Timeout: 30 * time.Minute},
		domain: EarthdataDomain,
	}
	for _, opt := range opts {
		opt(s)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	s.client.Jar = jar
	s.client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		s.authorize(req)
		return nil
	}
	return s, nil
}

// Authenticated reports whether the session carries credentials.
func (s *Session) Authenticated() bool {
	return s.creds.Token != "" || s.creds.Username != ""
}

// Do sends req with Earthdata credentials attached when the host is trusted.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	s.authorize(req)
	return s.client.Do(req)
}

func (s *Session) authorize(req *http.Request) {
	if !s.Authenticated() || !s.trusted(req.URL.Hostname()) {
		return
	}
	if s.creds.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.creds.Token)
		return
	}
	req.SetBasicAuth(s.creds.Username, s.creds.Password)
}

func (s *Session) trusted(host string) bool {
	return host == s.domain || strings.HasSuffix(host, "."+s.domain)
}
