package pedigree

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pedigree-genetics/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes cuelga el árbol de ancestros bajo /dogs/{dogID}.
func RegisterRoutes(r chi.Router, b *Builder, defaultGenerations int) {
	r.Get("/dogs/{dogID}/pedigree", getPedigreeHandler(b, defaultGenerations))
}

type pedigreeResponse struct {
	Root           *Node              `json:"root"`
	MaxGenerations int                `json:"maxGenerations"`
	Depth          int                `json:"depth"`
	Completeness   float64            `json:"completeness"`
	Warnings       []IntegrityWarning `json:"warnings"`
}

// getPedigreeHandler godoc
// @Summary Árbol de ancestros
// @Description Devuelve el pedigree del perro hasta N generaciones. Ancestros desconocidos son null.
// @Tags pedigree
// @Produce json
// @Param dogID path string true "ID del perro"
// @Param generations query int false "Generaciones (default configurable)"
// @Success 200 {object} pedigreeResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /dogs/{dogID}/pedigree [get]
func getPedigreeHandler(b *Builder, defaultGenerations int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		gens := defaultGenerations
		if raw := strings.TrimSpace(r.URL.Query().Get("generations")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "generations must be an integer")
				return
			}
			gens = n
		}

		tree, err := b.Build(r.Context(), chi.URLParam(r, "dogID"), gens)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, ErrNotFound):
				writeError(w, http.StatusNotFound, "dog not found")
			case errors.Is(err, ErrUpstreamUnavailable):
				writeError(w, http.StatusServiceUnavailable, "pedigree store unavailable, retry later")
			default:
				writeError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		warnings := tree.Warnings
		if warnings == nil {
			warnings = []IntegrityWarning{}
		}
		writeJSON(w, http.StatusOK, pedigreeResponse{
			Root:           tree.Root,
			MaxGenerations: tree.MaxGenerations,
			Depth:          tree.Depth(),
			Completeness:   tree.Completeness(),
			Warnings:       warnings,
		})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
