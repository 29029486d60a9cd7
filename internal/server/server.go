package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/kiesman99/tilesplit/internal/api"
	"github.com/kiesman99/tilesplit/internal/manifest"
	"github.com/kiesman99/tilesplit/internal/slicer"
	"github.com/kiesman99/tilesplit/pkg/tile"
)

// DefaultMaxBodyBytes limits uploaded tilemaps to 32 MiB
const DefaultMaxBodyBytes = 32 << 20

// Server implements the ServerInterface from the api package
type Server struct {
	startTime    time.Time
	version      string
	maxBodyBytes int64
}

// NewServer creates a new server instance
func NewServer(version string) *Server {
	return &Server{
		startTime:    time.Now(),
		version:      version,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// WithMaxBodyBytes sets the largest accepted upload
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// GetHealth implements the health check endpoint
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	uptime := int(time.Since(s.startTime).Seconds())

	response := api.HealthResponse{
		Status:    api.Healthy,
		Timestamp: time.Now(),
		Uptime:    &uptime,
		Version:   &s.version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}

// CreateSplit implements the split endpoint. The request body is the raw
// tilemap image.
func (s *Server) CreateSplit(w http.ResponseWriter, r *http.Request, params api.SplitParams) {
	requestID := generateRequestID()

	names, err := s.resolveNames(params)
	if err != nil {
		s.writeValidationErrorResponse(w, "names", err.Error(), &requestID)
		return
	}

	prefix := tile.DefaultPrefix
	if params.Prefix != nil {
		prefix = *params.Prefix
	}
	if err := tile.ValidatePrefix(prefix); err != nil {
		s.writeValidationErrorResponse(w, "prefix", err.Error(), &requestID)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, http.StatusRequestEntityTooLarge, api.IMAGETOOLARGE,
				fmt.Sprintf("Image exceeds %d bytes", tooLarge.Limit), &requestID, nil)
			return
		}
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDIMAGE,
			"Failed to read request body", &requestID, nil)
		return
	}

	st := slicer.New()

	img, err := st.Processor().Decode(bytes.NewReader(data))
	if err != nil {
		s.writeErrorResponse(w, http.StatusBadRequest, api.INVALIDIMAGE,
			fmt.Sprintf("Request body is not a decodable image: %v", err), &requestID, nil)
		return
	}

	strict := params.Strict != nil && *params.Strict
	result, err := st.Split(r.Context(), img, names, strict)
	if err != nil {
		s.handleSplitError(w, err, &requestID)
		return
	}

	response, err := s.buildResponse(st, result, prefix)
	if err != nil {
		log.Printf("[%s] Error encoding tiles: %v", requestID, err)
		s.writeErrorResponse(w, http.StatusInternalServerError, api.INTERNALERROR,
			"Internal server error", &requestID, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", requestID)
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// resolveNames turns the query parameters into a validated name table
func (s *Server) resolveNames(params api.SplitParams) (tile.NameTable, error) {
	var names tile.NameTable
	if params.Names != nil {
		parsed, err := tile.ParseNames(*params.Names)
		if err != nil {
			return nil, err
		}
		names = parsed
	}

	var rows, cols int
	if params.Rows != nil {
		if *params.Rows < 1 {
			return nil, fmt.Errorf("rows must be positive")
		}
		rows = *params.Rows
	}
	if params.Cols != nil {
		if *params.Cols < 1 {
			return nil, fmt.Errorf("cols must be positive")
		}
		cols = *params.Cols
	}

	return tile.ResolveNames(names, rows, cols)
}

// buildResponse encodes every tile as base64 PNG
func (s *Server) buildResponse(st *slicer.Slicer, result *slicer.Result, prefix string) (*api.SplitResponse, error) {
	response := &api.SplitResponse{
		ImageWidth:  result.ImageWidth,
		ImageHeight: result.ImageHeight,
		TileWidth:   result.TileWidth,
		TileHeight:  result.TileHeight,
		Rows:        result.Grid.Rows,
		Cols:        result.Grid.Cols,
		Tiles:       make([]api.TileResponse, 0, len(result.Tiles)),
	}

	for _, t := range result.Tiles {
		data, err := st.Processor().PNGBytes(t.Image)
		if err != nil {
			return nil, fmt.Errorf("tile %s: %w", t.Name, err)
		}

		response.Tiles = append(response.Tiles, api.TileResponse{
			Name:         t.Name,
			File:         tile.FileName(prefix, t.Name),
			Row:          t.Row,
			Col:          t.Col,
			X:            t.Rect.Min.X,
			Y:            t.Rect.Min.Y,
			Width:        t.Rect.Dx(),
			Height:       t.Rect.Dy(),
			AverageColor: manifest.AverageColor(t.Image),
			MimeType:     "image/png",
			ImageBase64:  base64.StdEncoding.EncodeToString(data),
		})
	}

	return response, nil
}

// handleSplitError handles errors from the split process
func (s *Server) handleSplitError(w http.ResponseWriter, err error, requestID *string) {
	switch {
	case errors.Is(err, tile.ErrNotDivisible),
		errors.Is(err, tile.ErrImageTooSmall):
		s.writeValidationErrorResponse(w, "image", err.Error(), requestID)
		return
	case errors.Is(err, tile.ErrNameTableShape),
		errors.Is(err, tile.ErrDuplicateName),
		errors.Is(err, tile.ErrInvalidName),
		errors.Is(err, tile.ErrInvalidGrid):
		s.writeValidationErrorResponse(w, "names", err.Error(), requestID)
		return
	}

	log.Printf("[%s] Split failed: %v", *requestID, err)
	s.writeErrorResponse(w, http.StatusInternalServerError, api.INTERNALERROR,
		"Internal server error", requestID, nil)
}

// writeErrorResponse writes a standard error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string, requestID *string, details map[string]interface{}) {
	response := api.ErrorResponse{
		Error:     errorCode,
		Message:   message,
		RequestId: requestID,
	}

	if details != nil {
		response.Details = &details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// writeValidationErrorResponse writes a validation error response
func (s *Server) writeValidationErrorResponse(w http.ResponseWriter, field, message string, requestID *string) {
	response := api.ValidationErrorResponse{
		Error:     api.VALIDATIONERROR,
		Message:   message,
		RequestId: requestID,
		ValidationErrors: []api.ValidationError{
			{
				Field:   field,
				Message: message,
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(response)
}

// ParamErrorHandler reports query parameters that could not be bound
func (s *Server) ParamErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	field := "request"
	var paramErr *api.InvalidParamFormatError
	if errors.As(err, &paramErr) {
		field = paramErr.ParamName
	}

	requestID := generateRequestID()
	s.writeValidationErrorResponse(w, field, err.Error(), &requestID)
}

// generateRequestID generates a unique request ID
func generateRequestID() string {
	return "req_" + strconv.FormatInt(time.Now().UnixNano(), 10)
}
