package ogp

import (
	"fmt"
	"unicode/utf8"

	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
)

const ellipsis = "..."

func buildPreviews(data models.OGPData) models.PlatformPreviews {
	return models.PlatformPreviews{
		Twitter:  buildPreview(models.PlatformTwitter, data),
		Facebook: buildPreview(models.PlatformFacebook, data),
		Discord:  buildPreview(models.PlatformDiscord, data),
	}
}

func buildPreview(platform models.Platform, data models.OGPData) models.PlatformPreview {
	limit, _ := models.LimitFor(platform)

	title := truncate(data.Title, limit.Title)
	description := truncate(data.Description, limit.Description)

	preview := models.PlatformPreview{
		Platform:    platform,
		Title:       title,
		Description: description,
		Image:       data.Image,
		IsValid:     true,
		Warnings:    []string{},
		TitleLength: utf8.RuneCountInString(title),
		DescLength:  utf8.RuneCountInString(description),
		MaxTitleLen: limit.Title,
		MaxDescLen:  limit.Description,
	}

	if utf8.RuneCountInString(data.Title) > limit.Title {
		preview.Warnings = append(preview.Warnings, limitWarning("Title", platform, limit.Title))
	}
	if utf8.RuneCountInString(data.Description) > limit.Description {
		preview.Warnings = append(preview.Warnings, limitWarning("Description", platform, limit.Description))
	}

	return preview
}

func limitWarning(field string, platform models.Platform, limit int) string {
	return fmt.Sprintf("%s exceeds %s limit (%d characters)", field, platform.DisplayName(), limit)
}

// truncate shortens s to at most maxLen characters, ending in "...".
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	keep := maxLen - len(ellipsis)
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + ellipsis
}
