// Package epub provides a BookParser implementation for EPUB
// containers. It reads the OPF package document for metadata, reduces
// each spine entry to plain text by stripping markup and decoding
// entities, and extracts the declared cover image.
//
// Parsing is deliberately forgiving: an unreadable spine entry is
// skipped, and only a container with no readable content at all is an
// error.
package epub
