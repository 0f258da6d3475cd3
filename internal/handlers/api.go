package handlers

import (
	"net/http"

	"airsense_console/internal/chart"
	"airsense_console/internal/service"

	"github.com/gin-gonic/gin"
)

// chartsResponse is the JSON form of a loaded device view.
type chartsResponse struct {
	DeviceID string         `json:"deviceId"`
	State    string         `json:"state"`
	Error    string         `json:"error,omitempty"`
	Charts   []chart.Config `json:"charts"`
}

func viewCharts(view *service.DeviceView) chartsResponse {
	board := &chart.Board{Charts: []chart.Config{}}
	view.Draw(board)
	resp := chartsResponse{
		DeviceID: view.ID(),
		State:    view.State().String(),
		Charts:   board.Charts,
	}
	if err := view.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// @Summary      Device charts
// @Description  Loads the device and its readings of the last three weeks and returns one chart configuration per metric.
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device id"
// @Success      200  {object}  chartsResponse
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  chartsResponse
// @Router       /api/v1/devices/{id}/charts [get]
func (h *Handler) deviceCharts(c *gin.Context) {
	sess := currentSession(c)
	view := h.services.DeviceView(sess, c.Param("id"), service.ViewOptions{})
	if view.ID() == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "device id is required"})
		return
	}

	err := view.Load(c.Request.Context())
	if err != nil && c.Request.Context().Err() != nil {
		return
	}
	resp := viewCharts(view)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case h.clearOnAuthError(c.Request.Context(), sess, err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
	default:
		c.JSON(http.StatusBadGateway, resp)
	}
}
