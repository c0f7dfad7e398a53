package harness

import "regexp"

var uaVersionRe = regexp.MustCompile(`(Firefox|Chrome)/([\d.]+)`)

// ExtractVersion pulls the browser version out of a user-agent string by
// matching its Firefox/<version> or Chrome/<version> token. The version
// always comes from the client headers, never from the page payload.
func ExtractVersion(userAgent string) (string, bool) {
	m := uaVersionRe.FindStringSubmatch(userAgent)
	if m == nil {
		return "", false
	}
	return m[2], true
}
