package server

import (
	"encoding/json"
	"net/http"
)

type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *meta       `json:"meta,omitempty"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
	Meta    *meta     `json:"meta,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type meta struct {
	RequestID string `json:"request_id,omitempty"`
	Count     *int   `json:"count,omitempty"`
}

func buildMeta(r *http.Request) *meta {
	id := RequestIDFrom(r)
	if id == "" {
		return nil
	}
	return &meta{RequestID: id}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeJSON(w, status, successResponse{Success: true, Data: data, Meta: buildMeta(r)})
}

func jsonList(w http.ResponseWriter, r *http.Request, data interface{}, count int) {
	m := buildMeta(r)
	if m == nil {
		m = &meta{}
	}
	m.Count = &count
	writeJSON(w, http.StatusOK, successResponse{Success: true, Data: data, Meta: m})
}

func jsonError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Success: false,
		Error:   errorBody{Code: code, Message: message},
		Meta:    buildMeta(r),
	})
}
