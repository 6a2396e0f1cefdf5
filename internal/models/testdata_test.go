package models_test

// fullResponseJSON mirrors what the API returns for a well-tagged page.
const fullResponseJSON = `{
  "url": "https://example.com",
  "ogp_data": {
    "title": "Test Title",
    "description": "Test Description",
    "image": "https://example.com/image.jpg",
    "url": "https://example.com",
    "type": "website",
    "site_name": "Test Site",
    "image_width": "1200",
    "image_height": "630",
    "image_alt": ""
  },
  "validation": {
    "is_valid": true,
    "warnings": [],
    "errors": [],
    "checks": {"has_title": true, "has_description": true, "has_image": true, "image_valid": true, "url_valid": true}
  },
  "previews": {
    "twitter":  {"platform": "twitter",  "title": "Test Title", "description": "Test Description", "image": "https://example.com/image.jpg", "is_valid": true, "warnings": [], "title_length": 10, "desc_length": 16, "max_title_len": 70,  "max_desc_len": 200},
    "facebook": {"platform": "facebook", "title": "Test Title", "description": "Test Description", "image": "https://example.com/image.jpg", "is_valid": true, "warnings": [], "title_length": 10, "desc_length": 16, "max_title_len": 100, "max_desc_len": 300},
    "discord":  {"platform": "discord",  "title": "Test Title", "description": "Test Description", "image": "https://example.com/image.jpg", "is_valid": true, "warnings": [], "title_length": 0,  "desc_length": 0,  "max_title_len": 256, "max_desc_len": 2048}
  },
  "timestamp": "2024-01-01T00:00:00Z"
}`
