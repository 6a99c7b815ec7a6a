package network

import "errors"

// Sentinel errors for network construction and identifier generation.
var (
	// ErrDuplicatePage indicates two pages share the same name.
	ErrDuplicatePage = errors.New("duplicate page name")
	// ErrUnknownLink indicates a page links to a name that is not in the network.
	ErrUnknownLink = errors.New("link to unknown page")
	// ErrDuplicateID indicates two pages produced the same identifier.
	ErrDuplicateID = errors.New("duplicate page ID")
	// ErrNotGenerated indicates IDs were requested before GenerateIDs completed.
	ErrNotGenerated = errors.New("page IDs not generated")
	// ErrUnsupportedFormat indicates a network file extension with no decoder.
	ErrUnsupportedFormat = errors.New("unsupported network file format")
)
