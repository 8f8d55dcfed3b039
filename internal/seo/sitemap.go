package seo

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	imageNamespace   = "http://www.google.com/schemas/sitemap-image/1.1"
)

// SitemapImage is one image:image element.
type SitemapImage struct {
	Loc   string `xml:"image:loc"`
	Title string `xml:"image:title,omitempty"`
}

// SitemapURL is one url element of a sitemap.
type SitemapURL struct {
	Loc        string         `xml:"loc"`
	LastMod    string         `xml:"lastmod,omitempty"`
	ChangeFreq string         `xml:"changefreq,omitempty"`
	Priority   float64        `xml:"-"`
	Images     []SitemapImage `xml:"image:image,omitempty"`
}

type sitemapURLXML struct {
	Loc        string         `xml:"loc"`
	LastMod    string         `xml:"lastmod,omitempty"`
	ChangeFreq string         `xml:"changefreq,omitempty"`
	Priority   string         `xml:"priority,omitempty"`
	Images     []SitemapImage `xml:"image:image,omitempty"`
}

type urlSet struct {
	XMLName    xml.Name        `xml:"urlset"`
	XMLNS      string          `xml:"xmlns,attr"`
	XMLNSImage string          `xml:"xmlns:image,attr"`
	URLs       []sitemapURLXML `xml:"url"`
}

// MarshalSitemap renders urls as a sitemap document with the image extension.
func MarshalSitemap(urls []SitemapURL) ([]byte, error) {
	set := urlSet{
		XMLNS:      sitemapNamespace,
		XMLNSImage: imageNamespace,
		URLs:       make([]sitemapURLXML, 0, len(urls)),
	}
	for _, u := range urls {
		entry := sitemapURLXML{
			Loc:        u.Loc,
			LastMod:    u.LastMod,
			ChangeFreq: u.ChangeFreq,
			Images:     u.Images,
		}
		if u.Priority > 0 {
			entry.Priority = fmt.Sprintf("%.1f", u.Priority)
		}
		set.URLs = append(set.URLs, entry)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("seo: encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
