package models

import (
	"time"

	"github.com/MalinduDS/styleshot/internal/lighting"
)

// SessionView is the JSON representation of a styling session
type SessionView struct {
	ID          string       `json:"id"`
	Upload      *UploadItem  `json:"upload,omitempty"`
	ModelID     string       `json:"model_id"`
	Scene       string       `json:"scene"`
	SceneLength int          `json:"scene_length"`
	SceneMax    int          `json:"scene_max"`
	Lighting    LightingView `json:"lighting"`
	Prompt      string       `json:"prompt"`
	Result      *ResultItem  `json:"result,omitempty"`
	Loading     bool         `json:"loading"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// UploadItem represents the uploaded product photo
type UploadItem struct {
	Filename   string `json:"filename"`
	PreviewURL string `json:"preview_url"`
	MIMEType   string `json:"mime_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Size       int    `json:"size"`
}

// ResultItem represents the last generated image
type ResultItem struct {
	URL         string    `json:"url"`
	MIMEType    string    `json:"mime_type"`
	Provider    string    `json:"provider"`
	Model       string    `json:"model"`
	Prompt      string    `json:"prompt"`
	GeneratedAt time.Time `json:"generated_at"`
}

// LightingView exposes the live values and the undo/redo history
type LightingView struct {
	Current lighting.State   `json:"current"`
	History []lighting.State `json:"history"`
	Cursor  int              `json:"cursor"`
	CanUndo bool             `json:"can_undo"`
	CanRedo bool             `json:"can_redo"`
	Min     int              `json:"min"`
	Max     int              `json:"max"`
}
