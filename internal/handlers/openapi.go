package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

// OpenAPIHandler serves the OpenAPI document in YAML and JSON.
type OpenAPIHandler struct {
	yamlData []byte
	jsonDoc  map[string]any
}

// NewOpenAPIHandler loads and parses the document at path once, at startup.
func NewOpenAPIHandler(path string) (*OpenAPIHandler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI document: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}

	return &OpenAPIHandler{yamlData: data, jsonDoc: doc}, nil
}

// Title returns info.title from the document, or "" when absent.
func (h *OpenAPIHandler) Title() string {
	info, _ := h.jsonDoc["info"].(map[string]any)
	title, _ := info["title"].(string)
	return title
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/openapi.yaml", h.ServeYAML).Methods(http.MethodGet)
	r.HandleFunc("/openapi.json", h.ServeJSON).Methods(http.MethodGet)
}

// ServeYAML serves the OpenAPI document in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	_, _ = w.Write(h.yamlData)
}

// ServeJSON serves the OpenAPI document in JSON format
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.jsonDoc); err != nil {
		http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
	}
}
