package bootstrap

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"

	"github.com/target/promptwait/config"
)

// BuildHTTPClient returns the client used for every service request. A cookie jar keeps
// session cookies set by fronting proxies, and a configured API token is sent as a bearer token.
func BuildHTTPClient(cfg config.ComfyConfig) (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	var transport http.RoundTripper = http.DefaultTransport.(*http.Transport).Clone()
	if cfg.APIToken != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken, TokenType: "Bearer"}),
			Base:   transport,
		}
	}

	return &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   cfg.RequestTimeout,
	}, nil
}
