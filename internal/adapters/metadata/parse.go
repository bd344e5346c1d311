// Package metadata looks up link preview data (title, snippet, preview
// image and site icon) for LINK attachments.
package metadata

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bubbleview/internal/domain"
)

var (
	titleSelectors = []string{
		`meta[property="og:title"]`,
		`meta[name="twitter:title"]`,
	}
	textSelectors = []string{
		`meta[property="og:description"]`,
		`meta[name="twitter:description"]`,
		`meta[name="description"]`,
	}
	imageSelectors = []string{
		`meta[property="og:image"]`,
		`meta[property="og:image:url"]`,
		`meta[name="twitter:image"]`,
	}
	iconSelectors = []string{
		`link[rel~="icon"]`,
		`link[rel="apple-touch-icon"]`,
	}
)

// ParseHTML reads preview metadata from an HTML document fetched from
// pageURL. Relative image and icon URLs are resolved against pageURL, and
// a page without an icon link gets the conventional /favicon.ico.
func ParseHTML(pageURL string, r io.Reader) (*domain.LinkMetadata, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(pageURL)

	meta := &domain.LinkMetadata{
		Title: firstContent(doc, titleSelectors),
		Text:  firstContent(doc, textSelectors),
	}
	if meta.Title == "" {
		meta.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	meta.PreviewImageURL = resolve(base, firstContent(doc, imageSelectors))

	for _, sel := range iconSelectors {
		if href, ok := doc.Find(sel).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			meta.FaviconURL = resolve(base, href)
			break
		}
	}
	if meta.FaviconURL == "" && base != nil && base.Host != "" {
		meta.FaviconURL = resolve(base, "/favicon.ico")
	}
	return meta, nil
}

func firstContent(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == nil || u.IsAbs() {
		return u.String()
	}
	return base.ResolveReference(u).String()
}
