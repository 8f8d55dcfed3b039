package seo

// Image is a share image as exposed to OpenGraph and Twitter cards.
type Image struct {
	URL    string
	Width  int
	Height int
	Alt    string
}

// SecureURL returns URL when it is served over https, for og:image:secure_url.
func (i Image) SecureURL() string {
	if len(i.URL) >= 8 && i.URL[:8] == "https://" {
		return i.URL
	}
	return ""
}

type OpenGraph struct {
	Title       string
	Description string
	Image       Image
	Type        string
	URL         string
	SiteName    string
	Locale      string
}

type Twitter struct {
	Card        string
	Title       string
	Description string
	Image       Image
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
	// JSONLD is the serialised structured-data payload for a script tag.
	JSONLD string
}
