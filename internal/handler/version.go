package handler

import "net/http"

// VersionResponse reports the deployed build for deployment verification.
type VersionResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

// HandleVersion returns the service name and version.
func HandleVersion(service, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, VersionResponse{Service: service, Version: version})
	}
}
