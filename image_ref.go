package designgen

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidImageRef is returned when an ImageRef cannot be decoded.
var ErrInvalidImageRef = errors.New("invalid image reference")

// ImageRef is an opaque handle to a renderable image. Refs produced by this
// package are data URIs ("data:image/jpeg;base64,..."), so a browser can
// show them directly and an export can decode them without a round trip.
// An ImageRef is never modified once created.
type ImageRef string

// NewImageRef encodes image bytes as a base64 data URI.
func NewImageRef(data []byte, mimeType string) (ImageRef, error) {
	if err := ValidateImageData(data, mimeType); err != nil {
		return "", err
	}
	return ImageRef("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)), nil
}

// String returns the ref as it would be placed in an img src attribute.
func (r ImageRef) String() string {
	return string(r)
}

// IsZero reports whether the ref is absent.
func (r ImageRef) IsZero() bool {
	return r == ""
}

// MIMEType returns the media type named in the data URI header, or ""
// when the ref is not a data URI.
func (r ImageRef) MIMEType() string {
	header, _, ok := r.split()
	if !ok {
		return ""
	}
	mimeType, _, _ := strings.Cut(header, ";")
	return mimeType
}

// Decode returns the raw bytes and MIME type carried by the ref.
func (r ImageRef) Decode() ([]byte, string, error) {
	header, payload, ok := r.split()
	if !ok {
		return nil, "", fmt.Errorf("%w: not a data URI", ErrInvalidImageRef)
	}

	mimeType, params, _ := strings.Cut(header, ";")
	if mimeType == "" {
		mimeType = "text/plain"
	}

	var data []byte
	var err error
	if strings.HasSuffix(params, "base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		data = []byte(s)
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImageRef, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrInvalidImageRef)
	}

	return data, mimeType, nil
}

func (r ImageRef) split() (header, payload string, ok bool) {
	rest, found := strings.CutPrefix(string(r), "data:")
	if !found {
		return "", "", false
	}
	return strings.Cut(rest, ",")
}
