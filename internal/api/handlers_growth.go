package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tendjournal/tend/internal/api/respond"
	"github.com/tendjournal/tend/internal/auth"
	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/services"
)

func handleTimeline(svc *services.GrowthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())
		areaName := mux.Vars(r)["areaName"]

		timeline, err := svc.Timeline(r.Context(), userID, areaName)
		if err != nil {
			respond.FromError(w, err)
			return
		}
		if timeline.Timeline == nil {
			timeline.Timeline = []model.TimelinePoint{}
		}
		if timeline.Milestones == nil {
			timeline.Milestones = []model.TimelinePoint{}
		}
		respond.WriteJSON(w, http.StatusOK, timeline)
	}
}

func handleSummary(svc *services.GrowthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())

		summary, total, err := svc.Summary(r.Context(), userID)
		if err != nil {
			respond.FromError(w, err)
			return
		}
		if summary == nil {
			summary = []model.AreaSummary{}
		}
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"summary":      summary,
			"totalEntries": total,
		})
	}
}

func handleMemory(svc *services.GrowthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())

		sum, err := svc.Memory(r.Context(), userID)
		if err != nil {
			respond.FromError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusOK, sum)
	}
}
