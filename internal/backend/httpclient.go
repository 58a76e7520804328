package backend

import (
	"crypto/tls"
	"net/http"

	"github.com/figgen/mcp-server/internal/config"
	"github.com/figgen/mcp-server/internal/logger"
)

// newHTTPClient builds the outbound client shared by the upstream SDKs.
// Certificate validation is only disabled when the configuration explicitly
// asks for it; that mode is meant for constrained networks, never production.
func newHTTPClient(cfg *config.Config) *http.Client {
	if !cfg.SkipSSLVerification {
		return &http.Client{}
	}
	logger.Named("backend").Warn("SKIP_SSL_VERIFICATION is enabled; certificate validation is off")
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
}
