package handlers

import "net/http"

// RootResponse is the body of GET /.
type RootResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Root answers GET / with the API banner. The body does not depend on configuration.
func Root(title string) http.HandlerFunc {
	body := RootResponse{
		Message: title + " API",
		Status:  "running",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}
}
