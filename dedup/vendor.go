package dedup

import "strings"

var vendorPrefixes = []string{"-webkit-", "-moz-", "-ms-", "-o-"}

// VendorPrefix returns vendor prefix of the property name or empty string.
func VendorPrefix(property string) string {
	for _, p := range vendorPrefixes {
		if len(property) >= len(p) && strings.EqualFold(property[:len(p)], p) {
			return p
		}
	}
	return ""
}

// IsVendorPrefixed reports whether property is a vendor specific fallback
// (-webkit-, -moz-, -ms-, -o-). Classification is informational only and
// never changes how declarations are grouped.
func IsVendorPrefixed(property string) bool {
	return VendorPrefix(property) != ""
}
