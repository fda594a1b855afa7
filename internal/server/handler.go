package server

import (
	"encoding/json"
	"net/http"
	"time"

	"pricewatch/internal/tracker"
)

func (s Server) writeJsonResponse(w http.ResponseWriter, response any, statusCode int) {
	if resp, err := json.Marshal(response); err != nil {
		s.Logger.Errorf("Error encoding response: %+v, err: %v", response, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	} else {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(statusCode)
		if _, err = w.Write(resp); err != nil {
			s.Logger.Errorf("Error writing JSON response: %s, err: %v", resp, err)
		}
	}
}

func (s Server) healthCheck() http.HandlerFunc {
	type response struct {
		Status string `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJsonResponse(w, response{Status: "ok"}, http.StatusOK)
	}
}

func (s Server) appStatus() http.HandlerFunc {
	type response struct {
		Status   string         `json:"status"`
		Uptime   string         `json:"uptime"`
		Products int64          `json:"products"`
		LastRun  *tracker.Stats `json:"last_run,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := s.DB.ProductsCountActive(r.Context())
		if err != nil {
			s.Logger.Errorf("appStatus: Error counting active Products, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		resp := response{
			Status:   "ok",
			Uptime:   time.Since(s.StartTime).Round(time.Second).String(),
			Products: count,
		}
		if s.Runs != nil {
			resp.LastRun = s.Runs.Last()
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}
