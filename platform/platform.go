// Package platform holds the supported-platform URL pattern set and extracts
// short-form video links from message text.
package platform

import (
	"regexp"
	"strings"
)

// Link is a recognized video URL together with the platform it belongs to.
type Link struct {
	URL      string
	Platform string
}

type patternSet struct {
	name     string
	patterns []*regexp.Regexp
}

// Ordered so the first matching platform wins for ambiguous hosts.
var supported = []patternSet{
	{
		name: "Instagram",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/reel/[A-Za-z0-9_-]+/?`),
			regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/p/[A-Za-z0-9_-]+/?`),
		},
	},
	{
		name: "TikTok",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^https?://(?:www\.)?tiktok\.com/@[^/]+/video/\d+/?`),
			regexp.MustCompile(`^https?://(?:vm\.)?tiktok\.com/[A-Za-z0-9]+/?`),
			regexp.MustCompile(`^https?://(?:www\.)?tiktok\.com/t/[A-Za-z0-9]+/?`),
		},
	},
	{
		name: "YouTube",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/shorts/[A-Za-z0-9_-]+/?`),
			regexp.MustCompile(`^https?://(?:www\.)?youtu\.be/[A-Za-z0-9_-]+/?`),
		},
	},
}

// Detect returns the platform name for url, or "" if the URL is not from a
// supported platform.
func Detect(url string) string {
	for _, ps := range supported {
		for _, re := range ps.patterns {
			if re.MatchString(url) {
				return ps.name
			}
		}
	}
	return ""
}

// ExtractLinks scans message text and returns every supported video URL in
// order of appearance.
func ExtractLinks(text string) []Link {
	var links []Link
	for _, word := range strings.Fields(text) {
		if name := Detect(word); name != "" {
			links = append(links, Link{URL: word, Platform: name})
		}
	}
	return links
}
