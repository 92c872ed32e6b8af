package dto

// ScreenshotsToggleRequest updates per-room capture settings.
type ScreenshotsToggleRequest struct {
	ScreenshotsEnabled *bool `json:"screenshots_enabled" validate:"required"`
}

// ScreenshotsStatusResponse reports the room capture switch.
type ScreenshotsStatusResponse struct {
	ClassroomID        string `json:"classroom_id"`
	ScreenshotsEnabled bool   `json:"screenshots_enabled"`
}

// UploadScreenshotResponse confirms a stored capture.
type UploadScreenshotResponse struct {
	WorkplaceDir string `json:"workplace_dir"`
	Filename     string `json:"filename"`
}
