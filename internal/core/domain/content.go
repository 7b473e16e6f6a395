package domain

// BookContent is the parsed form of an EPUB: metadata plus spine
// chapters as plain text, ready for a rendering engine.
type BookContent struct {
	// Metadata holds the package metadata.
	Metadata BookMetadata

	// Chapters holds the spine entries in reading order.
	Chapters []Chapter

	// Cover holds the cover image, nil if the book declares none.
	Cover *CoverImage
}

// BookMetadata is the declared package metadata of an EPUB.
type BookMetadata struct {
	// Title is the declared title, empty if absent.
	Title string

	// Author is the primary creator.
	Author string

	// Publisher is the publisher.
	Publisher string

	// Language is the language code.
	Language string

	// Description is the publisher description.
	Description string

	// ISBN is the ISBN-ish identifier, if declared.
	ISBN string
}

// Chapter is one spine entry reduced to plain text.
type Chapter struct {
	// Title is the chapter heading, best effort.
	Title string

	// Text is the chapter content with markup stripped.
	Text string
}

// CoverImage is the cover as found in the container, unmodified.
type CoverImage struct {
	// Name is the manifest filename, used for its extension.
	Name string

	// Data is the raw image bytes.
	Data []byte
}
