package handler

import (
	"net/http"

	"github.com/meridianfarm/bloomwatch/internal/engine"
	"github.com/meridianfarm/bloomwatch/internal/raster"
	"github.com/meridianfarm/bloomwatch/internal/worker"
)

// RunAccepted is returned when a manual run has been queued.
type RunAccepted struct {
	Status string `json:"status"`
}

// HandleTriggerRun queues a manual engine run. Returns 409 when a run is
// already in flight.
func HandleTriggerRun(pool *worker.Pool, job *engine.RunJob) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !pool.TryEnqueue(job) {
			writeError(w, http.StatusConflict, "a run is already in progress")
			return
		}
		writeJSON(w, http.StatusAccepted, RunAccepted{Status: "queued"})
	}
}

// HandleLastRun exposes the most recent run result.
func HandleLastRun(job *engine.RunJob) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := job.LastResult()
		if result == nil {
			writeError(w, http.StatusNotFound, "no completed run yet")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// CatalogResponse summarizes the raster sources currently available.
type CatalogResponse struct {
	SourceTags []string `json:"sourceTags"`
	Empty      bool     `json:"empty"`
}

// HandleCatalog reports which raster sources are present on disk. An empty
// catalog means every layer will fall back to synthetic data.
func HandleCatalog(rasterDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog, err := raster.ScanDir(rasterDir)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to scan raster catalog")
			return
		}
		writeJSON(w, http.StatusOK, CatalogResponse{
			SourceTags: catalog.SourceTags(),
			Empty:      catalog.Empty(),
		})
	}
}
