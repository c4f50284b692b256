package domain

import (
	"regexp"
	"strings"
)

var (
	schemePrefix = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)
	// label(.label)+.tld, tld at least two letters
	hostShape = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)
)

// NormalizeHost reduces user input such as "HTTPS://WWW.Example.com/path"
// to a bare lower-case host name ("example.com").
func NormalizeHost(raw string) string {
	host := strings.TrimSpace(raw)
	host = schemePrefix.ReplaceAllString(host, "")
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if i := strings.LastIndex(host, "@"); i >= 0 {
		host = host[i+1:]
	}
	if i := strings.LastIndex(host, ":"); i >= 0 {
		host = host[:i]
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return strings.TrimPrefix(host, "www.")
}

// IsValidHost reports whether host has the basic domain-name shape.
func IsValidHost(host string) bool {
	return len(host) <= 253 && hostShape.MatchString(host)
}

// FaviconURL returns the favicon service URL for a host.
func FaviconURL(host string) string {
	return "https://www.google.com/s2/favicons?domain=" + host + "&sz=32"
}

// Initials returns the first two letters of the host's first label, upper-cased.
func Initials(host string) string {
	label, _, _ := strings.Cut(host, ".")
	if len(label) > 2 {
		label = label[:2]
	}
	return strings.ToUpper(label)
}
