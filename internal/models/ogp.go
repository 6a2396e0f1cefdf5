// Package models defines the verification request/response contract shared by
// the HTTP API, the engine that produces responses and the client session
// that consumes them.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrShape is wrapped by every decode failure caused by a missing part of the
// response contract.
var ErrShape = errors.New("response shape invalid")

// VerificationRequest asks for one URL to be verified.
type VerificationRequest struct {
	URL string `json:"url"`
}

// VerificationResponse is the full report for one URL. Treat values as
// immutable once decoded or built.
type VerificationResponse struct {
	URL        string           `json:"url"`
	OGPData    OGPData          `json:"ogp_data"`
	Validation ValidationResult `json:"validation"`
	Previews   PlatformPreviews `json:"previews"`
	// Timestamp is ISO-8601 and kept exactly as received.
	Timestamp string `json:"timestamp"`
}

// OGPData holds raw og:* tag values. An empty string means the tag was absent.
type OGPData struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	SiteName    string `json:"site_name"`
	ImageWidth  string `json:"image_width"`
	ImageHeight string `json:"image_height"`
	ImageAlt    string `json:"image_alt"`
}

// ValidationResult is the engine's verdict. IsValid implies len(Errors) == 0.
type ValidationResult struct {
	IsValid  bool             `json:"is_valid"`
	Warnings []string         `json:"warnings"`
	Errors   []string         `json:"errors"`
	Checks   ValidationChecks `json:"checks"`
}

// ValidationChecks are independent per-tag checks.
type ValidationChecks struct {
	HasTitle       bool `json:"has_title"`
	HasDescription bool `json:"has_description"`
	HasImage       bool `json:"has_image"`
	ImageValid     bool `json:"image_valid"`
	URLValid       bool `json:"url_valid"`
}

// PlatformPreview is OGP data as one platform would display it. TitleLength
// and DescLength are the character counts of Title and Description, which may
// already be truncated.
type PlatformPreview struct {
	Platform    Platform `json:"platform"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	IsValid     bool     `json:"is_valid"`
	Warnings    []string `json:"warnings"`
	TitleLength int      `json:"title_length"`
	DescLength  int      `json:"desc_length"`
	MaxTitleLen int      `json:"max_title_len"`
	MaxDescLen  int      `json:"max_desc_len"`
}

// PlatformPreviews always carries all three platforms.
type PlatformPreviews struct {
	Twitter  PlatformPreview `json:"twitter"`
	Facebook PlatformPreview `json:"facebook"`
	Discord  PlatformPreview `json:"discord"`
}

// Get returns the preview for p.
func (p *PlatformPreviews) Get(platform Platform) (PlatformPreview, bool) {
	switch platform {
	case PlatformTwitter:
		return p.Twitter, true
	case PlatformFacebook:
		return p.Facebook, true
	case PlatformDiscord:
		return p.Discord, true
	default:
		return PlatformPreview{}, false
	}
}

// UnmarshalJSON rejects partial preview sets.
func (p *PlatformPreviews) UnmarshalJSON(data []byte) error {
	var raw map[string]*PlatformPreview
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode previews: %w", err)
	}

	for _, platform := range Platforms() {
		if raw[string(platform)] == nil {
			return fmt.Errorf("%w: previews.%s is missing", ErrShape, platform)
		}
	}

	p.Twitter = *raw[string(PlatformTwitter)]
	p.Facebook = *raw[string(PlatformFacebook)]
	p.Discord = *raw[string(PlatformDiscord)]
	return nil
}

var requiredResponseKeys = []string{"url", "ogp_data", "validation", "previews", "timestamp"}

// UnmarshalJSON requires every top-level key of the contract to be present
// and non-null. Field values themselves are preserved as sent.
func (r *VerificationResponse) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if keys == nil {
		return fmt.Errorf("%w: response is null", ErrShape)
	}
	for _, key := range requiredResponseKeys {
		if v, ok := keys[key]; !ok || string(v) == "null" {
			return fmt.Errorf("%w: %s is missing", ErrShape, key)
		}
	}

	type plain VerificationResponse
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	*r = VerificationResponse(decoded)
	return nil
}

// IsDisplayable reports whether a presenter can render resp. Any response
// that decoded with its shape intact is displayable.
func IsDisplayable(resp *VerificationResponse) bool {
	return resp != nil
}

// HealthStatus is the GET /health contract.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
