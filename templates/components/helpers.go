// Package components holds the HTML fragments the pages are built from.
package components

import (
	"net/url"

	"github.com/a-h/templ"

	"bubbleview/internal/preview"
)

// SelectURL is the page URL for slug with id selected.
func SelectURL(slug, id string) string {
	return "/b/" + url.PathEscape(slug) + "?selected=" + url.QueryEscape(id)
}

// mediaSrc sanitizes a media URL for src attributes, which templ does not
// check on its own.
func mediaSrc(raw string) string {
	return string(templ.URL(raw))
}

func siteLabel(d *preview.Descriptor) string {
	if d.SiteLabel != "" {
		return d.SiteLabel
	}
	return d.Hostname
}
