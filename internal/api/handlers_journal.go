package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tendjournal/tend/internal/api/respond"
	"github.com/tendjournal/tend/internal/api/validate"
	"github.com/tendjournal/tend/internal/auth"
	"github.com/tendjournal/tend/internal/model"
	"github.com/tendjournal/tend/internal/services"
)

type createEntryRequest struct {
	Text      string `json:"text"`
	Image     string `json:"image"` // base64
	ImageMime string `json:"imageMime"`
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

func handleCreateEntry(svc *services.JournalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())

		var req createEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.WriteBadRequest(w, "invalid JSON body")
			return
		}
		if err := validate.Entry(req.Text, req.Image != ""); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}

		var image []byte
		if req.Image != "" {
			decoded, err := base64.StdEncoding.DecodeString(req.Image)
			if err != nil {
				respond.WriteBadRequest(w, "image is not valid base64")
				return
			}
			image = decoded
		}

		entry, err := svc.CreateEntry(r.Context(), services.CreateEntryRequest{
			UserID:    userID,
			Text:      req.Text,
			Image:     image,
			ImageMime: req.ImageMime,
		})
		if err != nil {
			respond.FromError(w, err)
			return
		}

		respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"entryId":        entry.EntryID,
			"growthNote":     entry.GrowthNote,
			"processingTime": entry.ProcessingTimeSeconds,
			"message":        "Entry analyzed and saved",
		})
	}
}

func handleListEntries(svc *services.JournalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())

		limit := queryInt(r, "limit", defaultPageSize)
		if limit <= 0 || limit > maxPageSize {
			limit = defaultPageSize
		}
		offset := queryInt(r, "offset", 0)
		if offset < 0 {
			offset = 0
		}

		entries, total, err := svc.ListEntries(r.Context(), model.ListEntriesRequest{
			UserID: userID, Limit: limit, Offset: offset,
		})
		if err != nil {
			respond.FromError(w, err)
			return
		}
		if entries == nil {
			entries = []*model.JournalEntry{}
		}
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"entries": entries,
			"total":   total,
			"limit":   limit,
			"offset":  offset,
		})
	}
}

func handleGetEntry(svc *services.JournalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())
		entryID := mux.Vars(r)["entryId"]

		entry, err := svc.GetEntry(r.Context(), userID, entryID)
		if err != nil {
			respond.FromError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusOK, entry)
	}
}

func handleDeleteEntry(svc *services.JournalService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := auth.UserID(r.Context())
		entryID := mux.Vars(r)["entryId"]

		if err := svc.DeleteEntry(r.Context(), userID, entryID); err != nil {
			respond.FromError(w, err)
			return
		}
		respond.WriteJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted"})
	}
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
