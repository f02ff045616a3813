package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mesosphere/uninstall-scheduler/internal/logger"
)

// RegisterLogsRoute mounts GET /logs on e, serving recent entries out of
// buf. Grounded on determined-ai/determined's master.getMasterLogs: the
// same three query parameters map onto Buffer.Entries' startID/endID/limit.
func RegisterLogsRoute(e *echo.Echo, buf *logger.Buffer) {
	e.GET("/logs", func(c echo.Context) error {
		startID := -1
		if raw := c.QueryParam("greater_than_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "greater_than_id must be an integer")
			}
			startID = id + 1
		}

		endID := -1
		if raw := c.QueryParam("less_than_id"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "less_than_id must be an integer")
			}
			endID = id
		}

		limit := -1
		if raw := c.QueryParam("tail"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "tail must be an integer")
			}
			limit = n
		}

		entries := buf.Entries(startID, endID, limit)
		if entries == nil {
			// Return a zero-length array here so the JSON encoding is `[]`
			// rather than `null`.
			entries = make([]*logger.Entry, 0)
		}
		return c.JSON(http.StatusOK, entries)
	})
}
