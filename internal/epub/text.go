package epub

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled regular expressions for markup stripping.
var (
	headingTag = regexp.MustCompile(`(?is)<h[1-3][^>]*>(.*?)</h[1-3]>`)
	titleTag   = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	headTag    = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	scriptTag  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	svgTag     = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	xmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockTag   = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|ol|ul|tr|table|blockquote|pre|section|article|figure)[^>]*>|<[bh]r\s*/?>`)
	anyTag     = regexp.MustCompile(`<[^>]+>`)
	spaceRun   = regexp.MustCompile(`[ \t\r\f]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

// chapterTitle extracts a heading for one spine entry: the first
// h1-h3, falling back to the document title.
func chapterTitle(source string) string {
	if m := headingTag.FindStringSubmatch(source); len(m) > 1 {
		title := anyTag.ReplaceAllString(m[1], "")
		if title = strings.TrimSpace(html.UnescapeString(title)); title != "" {
			return title
		}
	}
	if m := titleTag.FindStringSubmatch(source); len(m) > 1 {
		if title := strings.TrimSpace(html.UnescapeString(m[1])); title != "" {
			return title
		}
	}
	return ""
}

// flattenMarkup reduces XHTML to plain text: invisible subtrees go,
// block boundaries become line breaks, remaining tags are stripped,
// and entities are decoded.
func flattenMarkup(source string) string {
	source = headTag.ReplaceAllString(source, "")
	source = scriptTag.ReplaceAllString(source, "")
	source = styleTag.ReplaceAllString(source, "")
	source = svgTag.ReplaceAllString(source, "")
	source = xmlComment.ReplaceAllString(source, "")
	source = blockTag.ReplaceAllString(source, "\n")
	source = anyTag.ReplaceAllString(source, "")
	source = html.UnescapeString(source)
	source = spaceRun.ReplaceAllString(source, " ")
	source = newlineRun.ReplaceAllString(source, "\n\n")

	lines := strings.Split(source, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
