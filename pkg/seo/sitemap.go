// Package seo renders the sitemap and the schema.org JSON-LD documents the
// site embeds.
package seo

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type ChangeFreq string

const (
	ChangeDaily  ChangeFreq = "daily"
	ChangeWeekly ChangeFreq = "weekly"
)

// Page is one public route listed in the sitemap.
type Page struct {
	Path       string
	ChangeFreq ChangeFreq
	Priority   float64
}

// Pages are the public routes of the site.
var Pages = []Page{
	{Path: "/", ChangeFreq: ChangeWeekly, Priority: 1.0},
	{Path: "/portfolio", ChangeFreq: ChangeWeekly, Priority: 0.8},
	{Path: "/reels", ChangeFreq: ChangeDaily, Priority: 0.9},
	{Path: "/recenzii", ChangeFreq: ChangeWeekly, Priority: 0.7},
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap renders pages under baseURL with lastmod set to the UTC date of now.
func Sitemap(baseURL string, pages []Page, now time.Time) ([]byte, error) {
	base := strings.TrimRight(baseURL, "/")
	lastMod := now.UTC().Format(time.DateOnly)
	set := urlSet{XMLNS: sitemapNS, URLs: make([]sitemapURL, 0, len(pages))}
	for _, p := range pages {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        base + p.Path,
			LastMod:    lastMod,
			ChangeFreq: p.ChangeFreq,
			Priority:   formatPriority(p.Priority),
		})
	}
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

func formatPriority(p float64) string {
	if p <= 0 {
		return ""
	}
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
