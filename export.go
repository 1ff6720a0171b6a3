package designgen

import (
	"context"
	"fmt"
	"path"
)

// DefaultExportName is the base file name of a downloaded design.
const DefaultExportName = "tshirt-design"

// ExportResult contains information about an exported design.
type ExportResult struct {
	// URL is where the exported file can be accessed
	URL string

	// Path is the storage path/key where the file was saved
	Path string

	// MIMEType of the exported image
	MIMEType string

	// Size is the number of bytes saved
	Size int
}

// ExportFileName returns name with the extension matching the ref's MIME
// type, e.g. "tshirt-design.jpeg".
func ExportFileName(name string, ref ImageRef) string {
	if name == "" {
		name = DefaultExportName
	}
	return name + "." + extensionFromMIME(ref.MIMEType())
}

// ExportImage decodes ref and saves it to storage as {basePath}.{extension}.
func ExportImage(ctx context.Context, storage Storage, ref ImageRef, basePath string) (*ExportResult, error) {
	if storage == nil {
		return nil, ErrStorageNotConfigured
	}
	if ref.IsZero() {
		return nil, ErrNothingToExport
	}

	data, mimeType, err := ref.Decode()
	if err != nil {
		return nil, err
	}

	dir, name := path.Split(basePath)
	filePath := dir + ExportFileName(name, ref)

	url, err := storage.SaveFile(ctx, data, filePath, mimeType)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", filePath, err)
	}

	return &ExportResult{
		URL:      url,
		Path:     filePath,
		MIMEType: mimeType,
		Size:     len(data),
	}, nil
}

// extensionFromMIME returns a file extension for common image MIME types.
func extensionFromMIME(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg":
		return "jpeg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}
