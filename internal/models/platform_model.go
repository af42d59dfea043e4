package models

import "strings"

type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformFacebook  Platform = "Facebook"
	PlatformTwitter   Platform = "Twitter"
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformTikTok    Platform = "TikTok"
)

// Platforms returns every supported platform in display order.
func Platforms() []Platform {
	return []Platform{
		PlatformInstagram,
		PlatformFacebook,
		PlatformTwitter,
		PlatformLinkedIn,
		PlatformTikTok,
	}
}

func (p Platform) IsValid() bool {
	return p.DisplayName() != ""
}

// DisplayName returns the label shown next to the platform, or "" for unknown values.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformInstagram:
		return "Instagram (Meta)"
	case PlatformFacebook:
		return "Facebook (Meta)"
	case PlatformTwitter:
		return "X (Twitter)"
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformTikTok:
		return "TikTok"
	}
	return ""
}

// ParsePlatform matches name against the known platforms, ignoring case.
// "x" is accepted as an alias for Twitter.
func ParsePlatform(name string) (Platform, bool) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "x") {
		return PlatformTwitter, true
	}
	for _, p := range Platforms() {
		if strings.EqualFold(string(p), name) {
			return p, true
		}
	}
	return "", false
}
