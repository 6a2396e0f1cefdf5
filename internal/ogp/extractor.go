package ogp

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/north-cloud/ogp-verifier/internal/models"
)

// extractOGData reads the og:* meta tags. When a property repeats, the last
// occurrence in document order wins.
func extractOGData(doc *goquery.Document) models.OGPData {
	var data models.OGPData

	fields := map[string]*string{
		"og:title":        &data.Title,
		"og:description":  &data.Description,
		"og:image":        &data.Image,
		"og:url":          &data.URL,
		"og:type":         &data.Type,
		"og:site_name":    &data.SiteName,
		"og:image:width":  &data.ImageWidth,
		"og:image:height": &data.ImageHeight,
		"og:image:alt":    &data.ImageAlt,
	}

	doc.Find("meta[property]").Each(func(_ int, s *goquery.Selection) {
		property, _ := s.Attr("property")
		target, ok := fields[property]
		if !ok {
			return
		}
		content, _ := s.Attr("content")
		*target = content
	})

	return data
}
