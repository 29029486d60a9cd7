// Package api defines the HTTP wire types and routing for the tilesplit server.
package api

import "time"

// Defines values for HealthResponseStatus.
const (
	Healthy   HealthResponseStatus = "healthy"
	Unhealthy HealthResponseStatus = "unhealthy"
)

// Error codes returned in ErrorResponse.Error.
const (
	INVALIDIMAGE    = "INVALID_IMAGE"
	IMAGETOOLARGE   = "IMAGE_TOO_LARGE"
	INTERNALERROR   = "INTERNAL_ERROR"
	VALIDATIONERROR = "VALIDATION_ERROR"
)

// HealthResponseStatus defines model for HealthResponse.Status.
type HealthResponseStatus string

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status    HealthResponseStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
	Uptime    *int                 `json:"uptime,omitempty"`
	Version   *string              `json:"version,omitempty"`
}

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error     string                  `json:"error"`
	Message   string                  `json:"message"`
	Details   *map[string]interface{} `json:"details,omitempty"`
	RequestId *string                 `json:"request_id,omitempty"`
}

// ValidationError names the parameter that failed validation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorResponse defines model for ValidationErrorResponse.
type ValidationErrorResponse struct {
	Error            string            `json:"error"`
	Message          string            `json:"message"`
	RequestId        *string           `json:"request_id,omitempty"`
	ValidationErrors []ValidationError `json:"validation_errors"`
}

// SplitParams defines query parameters for CreateSplit.
type SplitParams struct {
	// Rows of the grid. Defaults to the number of rows of the name table.
	Rows *int `form:"rows,omitempty" json:"rows,omitempty"`

	// Cols of the grid. Defaults to the number of columns of the name table.
	Cols *int `form:"cols,omitempty" json:"cols,omitempty"`

	// Names as "a,b;c,d". Defaults to the built-in 4x4 table.
	Names *string `form:"names,omitempty" json:"names,omitempty"`

	// Prefix of every tile file name. Defaults to "tile_".
	Prefix *string `form:"prefix,omitempty" json:"prefix,omitempty"`

	// Strict rejects images whose size is not a multiple of the grid.
	Strict *bool `form:"strict,omitempty" json:"strict,omitempty"`
}

// SplitResponse defines model for SplitResponse.
type SplitResponse struct {
	ImageWidth  int            `json:"image_width"`
	ImageHeight int            `json:"image_height"`
	TileWidth   int            `json:"tile_width"`
	TileHeight  int            `json:"tile_height"`
	Rows        int            `json:"rows"`
	Cols        int            `json:"cols"`
	Tiles       []TileResponse `json:"tiles"`
}

// TileResponse defines model for TileResponse.
type TileResponse struct {
	Name         string `json:"name"`
	File         string `json:"file"`
	Row          int    `json:"row"`
	Col          int    `json:"col"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AverageColor string `json:"average_color"`
	MimeType     string `json:"mime_type"`
	ImageBase64  string `json:"image_base64"`
}
