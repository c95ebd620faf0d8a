package oauthflow

import (
	"strings"

	"github.com/pepicrft/schlussel/internal/oautherr"
)

var devExemptPrefixes = []string{
	"http://localhost",
	"http://127.0.0.1",
	"http://[::1]",
}

// EnsureHTTPS requires endpoint to start with https://, or with one of the
// development-exemption prefixes (loopback addresses over plain http).
func EnsureHTTPS(endpoint string) error {
	if strings.HasPrefix(endpoint, "https://") {
		return nil
	}
	for _, prefix := range devExemptPrefixes {
		if strings.HasPrefix(endpoint, prefix) {
			return nil
		}
	}
	return oautherr.New(oautherr.KindInsecureEndpoint, "endpoint must use https:// or a loopback http:// address: "+endpoint)
}
