package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Platform identifies a supported social platform.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformFacebook  Platform = "facebook"
)

// AllPlatforms returns every supported platform.
func AllPlatforms() []Platform {
	return []Platform{PlatformInstagram, PlatformLinkedIn, PlatformFacebook}
}

// ErrUnsupportedPlatform is returned when a platform string is not one of the
// supported enum values. Callers must reject the request with no side effects.
var ErrUnsupportedPlatform = eris.New("unsupported platform")

// ParsePlatform normalizes and validates a platform string.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PlatformInstagram, PlatformLinkedIn, PlatformFacebook:
		return p, nil
	}
	return "", eris.Wrapf(ErrUnsupportedPlatform, "%q", s)
}

// Supported reports whether p is one of the known platforms.
func (p Platform) Supported() bool {
	switch p {
	case PlatformInstagram, PlatformLinkedIn, PlatformFacebook:
		return true
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}
