// Package source abstracts reading a local resource into binary content.
// A resource is addressed by a locator: a filesystem path or an http(s) URL
// (the browser-object analogue), and uploads work the same way with either.
package source

import "context"

// Descriptor describes a picked byte source as reported by the picking layer.
// Size and MIMEType are declared values; the actual size is resolved through
// a Reader before upload.
type Descriptor struct {
	Name     string
	MIMEType string
	Size     int64
	Locator  string
}

// Info is the resolved existence and size of a resource.
type Info struct {
	Exists bool
	Size   int64
}

// Reader resolves and reads a resource by locator.
type Reader interface {
	// Info reports whether the resource exists and its size. A missing
	// resource is not an error: Exists is false.
	Info(ctx context.Context, locator string) (Info, error)

	// ReadAll reads the full resource content into memory. Reading a missing
	// or unreadable resource fails with common.ErrResourceUnavailable.
	ReadAll(ctx context.Context, locator string) ([]byte, error)
}
