package oauthflow

import (
	"net/url"
	"strings"

	"github.com/pepicrft/schlussel/internal/oautherr"
)

// shellMetacharacters excludes '&' and '?' deliberately: those are ordinary
// query-string syntax in every authorize/verification URL this package
// builds. The characters kept here never appear in a properly percent-
// encoded URL, so their presence always indicates something other than a
// well-formed URL reached this check.
const shellMetacharacters = ";|`$(){}<>\\\"'\n\r"

// ValidateBrowserURL checks a URL before it is handed to an external
// open-in-browser collaborator: the scheme must be http or https, and the
// string must contain no shell metacharacters. It does not open the URL;
// callers own that side effect and treat its errors as best-effort.
func ValidateBrowserURL(rawURL string) error {
	if strings.ContainsAny(rawURL, shellMetacharacters) {
		return oautherr.New(oautherr.KindInvalidParameter, "url contains disallowed characters")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return oautherr.Wrap(oautherr.KindInvalidParameter, "url is not well-formed", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return oautherr.New(oautherr.KindInvalidParameter, "url scheme must be http or https")
	}
	return nil
}
