// Package oauthflow implements the OAuth 2.0 execution engine: URL/form
// encoding, HTTPS enforcement, the bounded HTTP POST primitive, the Device
// Code and Authorization Code + PKCE flows, the refresh grant, RFC 7591
// dynamic client registration, and an adapter onto golang.org/x/oauth2.
package oauthflow

import (
	"sort"
	"strings"
)

const unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789._~-"

var isUnreserved [256]bool

func init() {
	for i := 0; i < len(unreserved); i++ {
		isUnreserved[unreserved[i]] = true
	}
}

// URLEncode percent-encodes every byte outside [A-Za-z0-9._~-] as %HH, with
// uppercase hex digits.
func URLEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved[c] {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hexDigit(c >> 4))
		b.WriteByte(hexDigit(c & 0x0f))
	}
	return b.String()
}

func hexDigit(n byte) byte {
	const digits = "0123456789ABCDEF"
	return digits[n]
}

// FormEncode joins values as a application/x-www-form-urlencoded body with
// keys sorted for deterministic output. Empty values are omitted entirely
// (the caller is responsible for only including parameters it wants sent).
func FormEncode(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k, v := range values {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(URLEncode(k))
		b.WriteByte('=')
		b.WriteString(URLEncode(values[k]))
	}
	return b.String()
}
