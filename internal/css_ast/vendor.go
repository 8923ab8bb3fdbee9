package css_ast

import "strings"

// https://developer.mozilla.org/en-US/docs/Glossary/Vendor_Prefix
var VendorPrefixes = []string{"", "-webkit-", "-moz-", "-o-", "-ms-"}

// Reports whether "maybePrefixed" is "base" with any known vendor prefix
// (including no prefix at all)
func IsPrefixedKeyword(maybePrefixed string, base string) bool {
	for _, prefix := range VendorPrefixes {
		if maybePrefixed == prefix+base {
			return true
		}
	}
	return false
}

// Strips a known vendor prefix, if any
func UnprefixedKeyword(keyword string) string {
	for _, prefix := range VendorPrefixes[1:] {
		if strings.HasPrefix(keyword, prefix) {
			return keyword[len(prefix):]
		}
	}
	return keyword
}
