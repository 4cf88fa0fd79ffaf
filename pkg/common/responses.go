package common

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes data as the JSON response body
func RespondJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}
