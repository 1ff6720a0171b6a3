package designgen

// PlaceholderText is what the mockup shows before any design exists.
const PlaceholderText = "Your design will appear here"

// Display is the input of the mockup preview. It carries nothing but what
// the preview needs to draw: the image, if any, and whether to spin.
type Display struct {
	ImageRef  ImageRef `json:"image_ref,omitempty"`
	IsLoading bool     `json:"is_loading"`
}

// ShowPlaceholder reports whether the preview should draw its neutral
// placeholder instead of an image.
func (d Display) ShowPlaceholder() bool {
	return d.ImageRef.IsZero() && !d.IsLoading
}

// ShowImage reports whether the preview should draw the image.
func (d Display) ShowImage() bool {
	return !d.ImageRef.IsZero() && !d.IsLoading
}

// View is a consistent snapshot of everything the controller exposes.
type View struct {
	GenerationID string   `json:"generation_id,omitempty"`
	Phase        Phase    `json:"phase"`
	Prompt       string   `json:"prompt"`
	IsLoading    bool     `json:"is_loading"`
	ErrorMessage string   `json:"error_message,omitempty"`
	ImageRef     ImageRef `json:"image_ref,omitempty"`
}

// Display returns the mockup input for this view.
func (v View) Display() Display {
	return Display{ImageRef: v.ImageRef, IsLoading: v.IsLoading}
}

// CanGenerate reports whether the generate trigger is enabled.
func (v View) CanGenerate() bool {
	return !v.IsLoading && v.Prompt != ""
}

// CanExport reports whether the download action is available.
func (v View) CanExport() bool {
	return !v.IsLoading && !v.ImageRef.IsZero()
}

// HasError reports whether the error banner is shown.
func (v View) HasError() bool {
	return v.ErrorMessage != ""
}
