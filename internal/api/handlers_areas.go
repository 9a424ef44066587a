package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tendjournal/tend/internal/api/respond"
	"github.com/tendjournal/tend/internal/api/validate"
	"github.com/tendjournal/tend/internal/auth"
	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/services"
)

type areaRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

func (a areaRequest) validate() error {
	if err := validate.AreaName(a.Name); err != nil {
		return err
	}
	return validate.AreaDescription(a.Description)
}

func handleListAreas(svc *services.AreaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())

		areas, err := svc.List(r.Context(), userID)
		if err != nil {
			respond.FromError(w, err)
			return
		}
		if areas == nil {
			areas = []*model.GrowthArea{}
		}
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"growthAreas": areas})
	}
}

func handleReplaceAreas(svc *services.AreaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())

		var req struct {
			GrowthAreas []areaRequest `json:"growthAreas"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteBadRequest(w, "invalid JSON body")
			return
		}

		list := make([]*model.GrowthArea, 0, len(req.GrowthAreas))
		for _, a := range req.GrowthAreas {
			if err := a.validate(); err != nil {
				respond.WriteBadRequest(w, err.Error())
				return
			}
			active := true
			if a.IsActive != nil {
				active = *a.IsActive
			}
			list = append(list, &model.GrowthArea{
				Name:        a.Name,
				Description: a.Description,
				IsActive:    active,
			})
		}

		saved, err := svc.Replace(r.Context(), userID, list)
		if err != nil {
			respond.FromError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"growthAreas": saved})
	}
}

func handleUpdateArea(svc *services.AreaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())
		areaID := mux.Vars(r)["areaId"]

		var req areaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteBadRequest(w, "invalid JSON body")
			return
		}
		if err := req.validate(); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}

		updated, err := svc.Update(r.Context(), &model.GrowthArea{
			UserID:      userID,
			AreaID:      areaID,
			Name:        req.Name,
			Description: req.Description,
			IsActive:    active,
		})
		if err != nil {
			respond.FromError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusOK, updated)
	}
}

func handleDeleteArea(svc *services.AreaService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())
		areaID := mux.Vars(r)["areaId"]

		if err := svc.Delete(r.Context(), userID, areaID); err != nil {
			respond.FromError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Growth area deleted"})
	}
}
