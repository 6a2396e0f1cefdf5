package models

// Platform names a preview consumer.
type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformFacebook Platform = "facebook"
	PlatformDiscord  Platform = "discord"
)

// Limit is a platform's display limit in characters.
type Limit struct {
	Title       int
	Description int
}

var limits = map[Platform]Limit{
	PlatformTwitter:  {Title: 70, Description: 200},
	PlatformFacebook: {Title: 100, Description: 300},
	PlatformDiscord:  {Title: 256, Description: 2048},
}

// Platforms lists every platform in report order.
func Platforms() []Platform {
	return []Platform{PlatformTwitter, PlatformFacebook, PlatformDiscord}
}

// LimitFor returns the display limits of p.
func LimitFor(p Platform) (Limit, bool) {
	l, ok := limits[p]
	return l, ok
}

// DisplayName is the platform name used in warnings and reports.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformTwitter:
		return "Twitter"
	case PlatformFacebook:
		return "Facebook"
	case PlatformDiscord:
		return "Discord"
	default:
		return string(p)
	}
}
