package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/example/shortly/internal/models"
	"github.com/example/shortly/pkg/response"
)

func handleLinkStats(svc AnalyticsService) http.HandlerFunc {
	const op = "api.http.handleLinkStats"
	const successMsg = "The link statistics retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := callerID(r)
		shortCode := chi.URLParam(r, "shortCode")
		tf := models.Timeframe(r.URL.Query().Get("timeframe"))

		report, err := svc.SummarizeLink(r.Context(), userID, shortCode, tf)
		if err != nil {
			renderLinkAccessError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toReportResponse(report)))
	}
}

func handleOwnerStats(svc AnalyticsService) http.HandlerFunc {
	const op = "api.http.handleOwnerStats"
	const successMsg = "The account statistics retrieved successfully."

	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := callerID(r)
		tf := models.Timeframe(r.URL.Query().Get("timeframe"))

		stats, err := svc.SummarizeOwner(r.Context(), userID, tf)
		if err != nil {
			renderLinkAccessError(w, r, op, err)
			return
		}

		render.Status(r, http.StatusOK)
		render.JSON(w, r, response.SuccessResponse(successMsg, toOwnerStatsResponse(stats)))
	}
}
