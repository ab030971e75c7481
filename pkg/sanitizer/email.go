package sanitizer

import "strings"

// NormalizeEmail canonicalizes an address the way mailbox providers
// interpret it. It returns "" when s has no usable local part or domain.
//
//   - googlemail.com is rewritten to gmail.com; dots and +tags are kept
//   - Outlook, Hotmail, Live, MSN, iCloud and me.com drop +tags
//   - Yahoo, Ymail and Rocketmail drop -tags
func NormalizeEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return ""
	}
	local, domain := s[:at], s[at+1:]

	switch domain {
	case "gmail.com", "googlemail.com":
		domain = "gmail.com"
	case "outlook.com", "hotmail.com", "live.com", "msn.com", "icloud.com", "me.com":
		local = cutSuffixTag(local, '+')
	case "yahoo.com", "ymail.com", "rocketmail.com":
		local = cutSuffixTag(local, '-')
	}
	if local == "" {
		return ""
	}
	return local + "@" + domain
}

func cutSuffixTag(local string, sep byte) string {
	if i := strings.IndexByte(local, sep); i >= 0 {
		return local[:i]
	}
	return local
}
