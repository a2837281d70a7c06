package ai

// ArticleBrief is what an editor supplies for article text generation.
type ArticleBrief struct {
	Title    string
	Summary  string
	Date     string
	DateTo   string
	IntroURL string
	ImageURL string
}

// GenerateInputs builds the workflow inputs for article text generation.
func GenerateInputs(b ArticleBrief, defaultIntroURL string) map[string]any {
	intro := b.IntroURL
	if intro == "" {
		intro = defaultIntroURL
	}

	inputs := map[string]any{
		"date":      b.Date,
		"title":     b.Title,
		"summary":   b.Summary,
		"intro_url": intro,
	}
	if b.DateTo != "" {
		inputs["date_to"] = b.DateTo
	}
	if b.ImageURL != "" {
		inputs["picture"] = RemoteImage(b.ImageURL)
	}
	return inputs
}

// MediaInputs builds the workflow inputs for analysing an uploaded file.
func MediaInputs(url string) map[string]any {
	return map[string]any{"picture": RemoteImage(url)}
}

// RemoteImage is the file descriptor the workflow service expects for an
// image fetched by URL.
func RemoteImage(url string) []map[string]string {
	return []map[string]string{{
		"type":            "image",
		"transfer_method": "remote_url",
		"url":             url,
	}}
}
