package handlers

import "net/http"

// Build metadata is stamped at link time via -ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// VersionInfo handles the /version endpoint
func VersionInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version":    Version,
		"git_commit": GitCommit,
		"build_date": BuildDate,
	})
}
