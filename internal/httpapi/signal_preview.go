package httpapi

import (
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"horse.fit/lookout/internal/db"
	"horse.fit/lookout/internal/reader"
)

const (
	defaultPreviewMaxChars = 1000
	minPreviewMaxChars     = 200
	maxPreviewMaxChars     = 4000
)

type signalPreview struct {
	SignalID     int64   `json:"signal_id"`
	PreviewText  string  `json:"preview_text"`
	Source       string  `json:"source"`
	CharCount    int     `json:"char_count"`
	Truncated    bool    `json:"truncated"`
	PreviewError *string `json:"preview_error,omitempty"`
}

// handleSignalPreview fetches the page behind a stored signal and
// returns its readable text. When the fetch fails the stored
// description is the fallback, with the fetch error attached.
func (s *Server) handleSignalPreview(c echo.Context) error {
	signalID, err := parseSignalID(c.Param("signal_id"))
	if err != nil {
		return failValidation(c, map[string]string{"signal_id": err.Error()})
	}

	maxChars, err := parsePositiveInt(
		c.QueryParam("max_chars"),
		defaultPreviewMaxChars,
		minPreviewMaxChars,
		maxPreviewMaxChars,
	)
	if err != nil {
		return failValidation(c, map[string]string{"max_chars": err.Error()})
	}

	row, err := s.pool.SignalByID(c.Request().Context(), signalID)
	if err != nil {
		if db.IsNoRows(err) {
			return failNotFound(c, "Signal not found")
		}
		s.logger.Error().Err(err).Int64("signal_id", signalID).Msg("query signal failed")
		return internalError(c, "Failed to load signal")
	}

	previewRaw := ""
	source := "none"
	var previewErr error
	if strings.TrimSpace(row.URL) != "" {
		previewRaw, previewErr = reader.FetchText(c.Request().Context(), row.URL, row.Title)
		if previewErr == nil && strings.TrimSpace(previewRaw) != "" {
			source = "reader"
		} else {
			previewRaw = ""
		}
	}
	if previewRaw == "" && strings.TrimSpace(row.Description) != "" {
		previewRaw = row.Description
		source = "description"
	}

	previewText, truncated := reader.TruncateText(previewRaw, maxChars)
	resp := signalPreview{
		SignalID:    signalID,
		PreviewText: previewText,
		Source:      source,
		CharCount:   utf8.RuneCountInString(previewText),
		Truncated:   truncated,
	}
	if previewErr != nil {
		msg := previewErr.Error()
		resp.PreviewError = &msg
		s.logger.Warn().
			Err(previewErr).
			Int64("signal_id", signalID).
			Str("source", source).
			Msg("reader preview fallback used")
	}

	return success(c, resp)
}
