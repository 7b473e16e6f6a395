package epub

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/domain"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/core/ports/driven"
	"github.com/PlebeiusGaragicus/VibeReaderTwo-sub001/internal/logger"
)

// Ensure Parser implements the interface.
var _ driven.BookParser = (*Parser)(nil)

// Parser reads EPUB containers.
type Parser struct{}

// New creates a new EPUB parser.
func New() *Parser {
	return &Parser{}
}

// ParseFile reads the EPUB at path into the content model.
func (p *Parser) ParseFile(_ context.Context, filePath string) (*domain.BookContent, error) {
	rc, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip container: %v", domain.ErrInvalidBook, err)
	}
	defer rc.Close()

	return parseContainer(&rc.Reader)
}

// containerXML is the structure of META-INF/container.xml.
type containerXML struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// packageXML is the structure of the OPF package document. Element
// names match by local name only, so namespace prefixes never matter.
type packageXML struct {
	Metadata struct {
		Titles       []string        `xml:"title"`
		Creators     []string        `xml:"creator"`
		Publishers   []string        `xml:"publisher"`
		Languages    []string        `xml:"language"`
		Descriptions []string        `xml:"description"`
		Identifiers  []identifierXML `xml:"identifier"`
		Metas        []metaXML       `xml:"meta"`
	} `xml:"metadata"`
	Manifest struct {
		Items []manifestItem `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type identifierXML struct {
	Scheme string `xml:"scheme,attr"`
	Value  string `xml:",chardata"`
}

type metaXML struct {
	Name    string `xml:"name,attr"`
	Content string `xml:"content,attr"`
}

type manifestItem struct {
	ID         string `xml:"id,attr"`
	Href       string `xml:"href,attr"`
	MediaType  string `xml:"media-type,attr"`
	Properties string `xml:"properties,attr"`
}

// parseContainer reads one opened EPUB zip.
func parseContainer(r *zip.Reader) (*domain.BookContent, error) {
	opfPath, err := rootfilePath(r)
	if err != nil {
		return nil, err
	}

	opfData, err := readZipFile(r, opfPath)
	if err != nil {
		return nil, fmt.Errorf("%w: missing package document %s", domain.ErrInvalidBook, opfPath)
	}

	var pkg packageXML
	if err := xml.Unmarshal(opfData, &pkg); err != nil {
		return nil, fmt.Errorf("%w: package document: %v", domain.ErrInvalidBook, err)
	}

	opfDir := path.Dir(opfPath)
	manifest := make(map[string]manifestItem, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		manifest[item.ID] = item
	}

	content := &domain.BookContent{Metadata: packageMetadata(pkg)}

	for _, ref := range pkg.Spine.ItemRefs {
		item, ok := manifest[ref.IDRef]
		if !ok {
			logger.Debug("Spine references unknown manifest id %q", ref.IDRef)
			continue
		}
		if !isDocumentItem(item) {
			continue
		}

		href := resolveHref(opfDir, item.Href)
		data, err := readZipFile(r, href)
		if err != nil {
			logger.Debug("Skipping unreadable spine entry %s: %v", href, err)
			continue
		}

		source := string(data)
		content.Chapters = append(content.Chapters, domain.Chapter{
			Title: chapterTitle(source),
			Text:  flattenMarkup(source),
		})
	}

	if len(content.Chapters) == 0 {
		return nil, fmt.Errorf("%w: no readable spine entries", domain.ErrInvalidBook)
	}

	content.Cover = findCover(r, pkg, manifest, opfDir)
	return content, nil
}

// rootfilePath locates the OPF package document via
// META-INF/container.xml.
func rootfilePath(r *zip.Reader) (string, error) {
	data, err := readZipFile(r, "META-INF/container.xml")
	if err != nil {
		return "", fmt.Errorf("%w: missing META-INF/container.xml", domain.ErrInvalidBook)
	}

	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", fmt.Errorf("%w: container.xml: %v", domain.ErrInvalidBook, err)
	}
	for _, rf := range c.Rootfiles {
		if rf.FullPath != "" {
			return rf.FullPath, nil
		}
	}
	return "", fmt.Errorf("%w: container.xml names no rootfile", domain.ErrInvalidBook)
}

// readZipFile returns the contents of one archive member.
func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, file := range r.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		return data, err
	}
	return nil, fmt.Errorf("no such entry: %s", name)
}

// resolveHref turns a manifest href into an archive member name.
// Hrefs are relative to the package document and may be
// percent-encoded or carry fragments.
func resolveHref(opfDir, href string) string {
	if i := strings.IndexByte(href, '#'); i >= 0 {
		href = href[:i]
	}
	if unescaped, err := url.PathUnescape(href); err == nil {
		href = unescaped
	}
	if opfDir == "." || opfDir == "" {
		return path.Clean(href)
	}
	return path.Join(opfDir, href)
}

// packageMetadata maps the declared metadata onto the domain model.
func packageMetadata(pkg packageXML) domain.BookMetadata {
	return domain.BookMetadata{
		Title:       firstOf(pkg.Metadata.Titles),
		Author:      firstOf(pkg.Metadata.Creators),
		Publisher:   firstOf(pkg.Metadata.Publishers),
		Language:    firstOf(pkg.Metadata.Languages),
		Description: flattenMarkup(firstOf(pkg.Metadata.Descriptions)),
		ISBN:        isbnOf(pkg.Metadata.Identifiers),
	}
}

func firstOf(values []string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// isbnOf picks the first identifier that declares itself an ISBN.
func isbnOf(identifiers []identifierXML) string {
	for _, id := range identifiers {
		value := strings.TrimSpace(id.Value)
		switch {
		case strings.EqualFold(id.Scheme, "isbn"):
			return value
		case strings.HasPrefix(strings.ToLower(value), "urn:isbn:"):
			return value[len("urn:isbn:"):]
		}
	}
	return ""
}

// isDocumentItem reports whether a manifest item is spine text.
func isDocumentItem(item manifestItem) bool {
	mt := strings.ToLower(item.MediaType)
	if strings.Contains(mt, "xhtml") || strings.Contains(mt, "html") {
		return true
	}
	if mt != "" {
		return false
	}
	href := strings.ToLower(item.Href)
	return strings.HasSuffix(href, ".xhtml") ||
		strings.HasSuffix(href, ".html") ||
		strings.HasSuffix(href, ".htm")
}

// findCover locates the declared cover image: the EPUB 3 cover-image
// manifest property first, the EPUB 2 meta[name=cover] pointer second,
// and a manifest image with id "cover" as a last resort.
func findCover(r *zip.Reader, pkg packageXML, manifest map[string]manifestItem, opfDir string) *domain.CoverImage {
	var href string
	for _, item := range pkg.Manifest.Items {
		if strings.Contains(item.Properties, "cover-image") {
			href = item.Href
			break
		}
	}
	if href == "" {
		for _, meta := range pkg.Metadata.Metas {
			if meta.Name != "cover" || meta.Content == "" {
				continue
			}
			if item, ok := manifest[meta.Content]; ok && strings.HasPrefix(item.MediaType, "image/") {
				href = item.Href
			}
			break
		}
	}
	if href == "" {
		for _, item := range pkg.Manifest.Items {
			if item.ID == "cover" && strings.HasPrefix(item.MediaType, "image/") {
				href = item.Href
				break
			}
		}
	}
	if href == "" {
		return nil
	}

	name := resolveHref(opfDir, href)
	data, err := readZipFile(r, name)
	if err != nil || len(data) == 0 {
		logger.Debug("Declared cover %s is unreadable", name)
		return nil
	}
	return &domain.CoverImage{Name: name, Data: data}
}
