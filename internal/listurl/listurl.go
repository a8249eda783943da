// Package listurl builds the M3U access URL for a list entry from the
// server's DNS base and complement plus the entry's credentials.
package listurl

import "strings"

// Build returns {dns}/get.php?username={u}&password={p}{complement}.
// A single trailing slash on dns is stripped; if the base already contains
// a "?" the query is joined with "&". The complement is appended verbatim
// (it is a pre-formed query fragment, e.g. "&type=m3u_plus&output=mpegts").
// Credentials are not escaped: URLs already stored by the previous panel
// must round-trip byte-identical.
func Build(dns, complement, username, password string) string {
	base := strings.TrimSuffix(dns, "/")
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + "/get.php" + sep + "username=" + username + "&password=" + password + complement
}
