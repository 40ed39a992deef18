package models

// APOD is the astronomy picture of the day payload.
type APOD struct {
	Date           string `json:"date"`
	Title          string `json:"title"`
	Explanation    string `json:"explanation"`
	URL            string `json:"url"`
	HDURL          string `json:"hdurl,omitempty"`
	MediaType      string `json:"media_type"`
	Copyright      string `json:"copyright,omitempty"`
	ServiceVersion string `json:"service_version,omitempty"`
}

// IsZero reports whether the picture has not been loaded yet.
func (a APOD) IsZero() bool {
	return a.Date == "" && a.URL == "" && a.Title == ""
}

// IsVideo reports whether today's entry is a video rather than an image.
func (a APOD) IsVideo() bool {
	return a.MediaType == "video"
}
