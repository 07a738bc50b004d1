package genetics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pedigree-genetics/internal/domain/dogs"
	"pedigree-genetics/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/dogs/{dogID}/genotype", getGenotypeHandler(svc))
	r.Put("/dogs/{dogID}/genotype", putGenotypeHandler(svc))
}

type putGenotypeRequest struct {
	Breed         string            `json:"breed"`
	Loci          map[string]string `json:"loci"`
	HealthMarkers map[string]string `json:"healthMarkers"`
	Lab           string            `json:"lab"`
	TestedAt      string            `json:"testedAt"` // YYYY-MM-DD opcional
}

// putGenotypeHandler godoc
// @Summary Cargar perfil de ADN
// @Description Reemplaza el perfil genético del perro. Solo el owner. Loci como "D/d"; marcadores clear|carrier|at-risk.
// @Tags genetics
// @Accept json
// @Produce json
// @Param dogID path string true "ID del perro"
// @Param payload body putGenotypeRequest true "Perfil genético"
// @Success 200 {object} GenotypeProfile
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /dogs/{dogID}/genotype [put]
func putGenotypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req putGenotypeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		var testedAt *time.Time
		if strings.TrimSpace(req.TestedAt) != "" {
			t, err := time.Parse("2006-01-02", req.TestedAt)
			if err != nil {
				writeError(w, http.StatusBadRequest, "testedAt must be YYYY-MM-DD")
				return
			}
			testedAt = &t
		}

		p, err := svc.Upsert(r.Context(), chi.URLParam(r, "dogID"), claims.UserID, UpsertInput{
			Breed:         req.Breed,
			Loci:          req.Loci,
			HealthMarkers: req.HealthMarkers,
			Lab:           req.Lab,
			TestedAt:      testedAt,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// getGenotypeHandler godoc
// @Summary Obtener perfil de ADN
// @Tags genetics
// @Produce json
// @Param dogID path string true "ID del perro"
// @Success 200 {object} GenotypeProfile
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /dogs/{dogID}/genotype [get]
func getGenotypeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		p, err := svc.Get(r.Context(), chi.URLParam(r, "dogID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dogs.ErrNotFound):
		writeError(w, http.StatusNotFound, "dog not found")
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "no genotype on file")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
