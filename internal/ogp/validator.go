package ogp

import (
	"net/url"

	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
)

const (
	warnMissingTitle       = "Missing og:title tag"
	warnMissingDescription = "Missing og:description tag"
	warnMissingImage       = "Missing og:image tag"
	errInvalidImageURL     = "Invalid image URL"
)

func validate(data models.OGPData) models.ValidationResult {
	result := models.ValidationResult{
		Warnings: []string{},
		Errors:   []string{},
		Checks: models.ValidationChecks{
			HasTitle:       data.Title != "",
			HasDescription: data.Description != "",
			HasImage:       data.Image != "",
			URLValid:       data.URL != "" && isParseableURL(data.URL),
		},
	}

	if !result.Checks.HasTitle {
		result.Warnings = append(result.Warnings, warnMissingTitle)
	}
	if !result.Checks.HasDescription {
		result.Warnings = append(result.Warnings, warnMissingDescription)
	}
	if !result.Checks.HasImage {
		result.Warnings = append(result.Warnings, warnMissingImage)
	}

	if result.Checks.HasImage {
		result.Checks.ImageValid = isHTTPURL(data.Image)
		if !result.Checks.ImageValid {
			result.Errors = append(result.Errors, errInvalidImageURL)
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func isParseableURL(raw string) bool {
	_, err := url.Parse(raw)
	return err == nil
}

// isHTTPURL accepts absolute http(s) URLs with a host.
func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
