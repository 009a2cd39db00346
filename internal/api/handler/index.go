package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type IndexHandler struct {
	version string
}

func NewIndexHandler(version string) *IndexHandler {
	return &IndexHandler{version: version}
}

// Index greets clients hitting the API root.
func (h *IndexHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "HCO backend is running",
		"version": h.version,
	})
}
