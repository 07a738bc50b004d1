package breeding

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pedigree-genetics/internal/domain/genetics"
	"pedigree-genetics/internal/domain/pedigree"
	"pedigree-genetics/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/breeding", func(br chi.Router) {
		br.Post("/coi", coiHandler(svc))
		br.Post("/compatibility", compatibilityHandler(svc))
		br.Post("/predict", predictHandler(svc))
		br.Get("/analyses", historyHandler(svc))
	})
}

type coiRequest struct {
	SireID      string   `json:"sireId"`
	DamID       string   `json:"damId"`
	Generations *int     `json:"generations,omitempty"`
	Loci        []string `json:"loci,omitempty"`
}

func (r coiRequest) toRequest() (Request, bool) {
	req := Request{SireID: r.SireID, DamID: r.DamID, Loci: r.Loci}
	if r.Generations != nil {
		// 0 explícito no es "default": es inválido
		if *r.Generations == 0 {
			return Request{}, false
		}
		req.Generations = *r.Generations
	}
	return req, true
}

type genotypeInput struct {
	Breed         string                           `json:"breed"`
	Loci          map[string]string                `json:"loci"`
	HealthMarkers map[string]genetics.HealthStatus `json:"healthMarkers"`
}

func (g *genotypeInput) profile(role string) *genetics.GenotypeProfile {
	if g == nil {
		return nil
	}
	return &genetics.GenotypeProfile{DogID: role, Breed: g.Breed, Loci: g.Loci, HealthMarkers: g.HealthMarkers}
}

type predictRequest struct {
	Sire      *genotypeInput `json:"sire"`
	Dam       *genotypeInput `json:"dam"`
	SireBreed string         `json:"sireBreed"`
	DamBreed  string         `json:"damBreed"`
	Loci      []string       `json:"loci"`
}

type analysisResponse struct {
	ID            string          `json:"id"`
	Kind          Kind            `json:"kind"`
	SireID        string          `json:"sireId"`
	DamID         string          `json:"damId"`
	Generations   int             `json:"generations"`
	COIPercentage float64         `json:"coiPercentage"`
	RiskLevel     string          `json:"riskLevel"`
	IsEstimate    bool            `json:"isEstimate"`
	Result        json.RawMessage `json:"result"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// coiHandler godoc
// @Summary Calcular COI de una cruza
// @Description Coeficiente de consanguinidad (Wright) de la cría hipotética de sire x dam. generations opcional (default configurable).
// @Tags breeding
// @Accept json
// @Produce json
// @Param payload body coiRequest true "sireId, damId, generations"
// @Success 200 {object} COIReport
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 503 {object} errorResponse "reintentar"
// @Router /breeding/coi [post]
func coiHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		req, ok := decodeCOIRequest(w, r)
		if !ok {
			return
		}

		report, err := svc.CalculateCOI(r.Context(), userID, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// compatibilityHandler godoc
// @Summary Reporte de compatibilidad
// @Description COI + predicción genética de la cría (color y marcadores de salud) + recomendaciones.
// @Tags breeding
// @Accept json
// @Produce json
// @Param payload body coiRequest true "sireId, damId, generations, loci"
// @Success 200 {object} CompatibilityReport
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 503 {object} errorResponse "reintentar"
// @Router /breeding/compatibility [post]
func compatibilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		req, ok := decodeCOIRequest(w, r)
		if !ok {
			return
		}

		report, err := svc.Compatibility(r.Context(), userID, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// predictHandler godoc
// @Summary Predicción de crías desde genotipos
// @Description Segregación mendeliana por locus sin consultar el pedigree. Un padre sin perfil usa la frecuencia de portadores de su raza.
// @Tags breeding
// @Accept json
// @Produce json
// @Param payload body predictRequest true "Genotipos de sire y dam"
// @Success 200 {object} genetics.OffspringPrediction
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /breeding/predict [post]
func predictHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireUser(w, r); !ok {
			return
		}

		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		pred, err := svc.Predict(genetics.Parents{
			Sire:      req.Sire.profile("sire"),
			Dam:       req.Dam.profile("dam"),
			SireBreed: req.SireBreed,
			DamBreed:  req.DamBreed,
		}, req.Loci)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, pred)
	}
}

// historyHandler godoc
// @Summary Historial de análisis
// @Tags breeding
// @Produce json
// @Param limit query int false "Máximo de filas (default 20, máx 100)"
// @Success 200 {array} analysisResponse
// @Failure 401 {object} errorResponse
// @Router /breeding/analyses [get]
func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}

		limit := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}

		items, err := svc.History(r.Context(), userID, limit)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]analysisResponse, 0, len(items))
		for _, a := range items {
			out = append(out, analysisResponse{
				ID:            a.ID,
				Kind:          a.Kind,
				SireID:        a.SireID,
				DamID:         a.DamID,
				Generations:   a.Generations,
				COIPercentage: a.COIPercentage,
				RiskLevel:     string(a.RiskLevel),
				IsEstimate:    a.IsEstimate,
				Result:        a.Result,
				CreatedAt:     a.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return claims.UserID, true
}

func decodeCOIRequest(w http.ResponseWriter, r *http.Request) (Request, bool) {
	var body coiRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return Request{}, false
	}
	req, ok := body.toRequest()
	if !ok {
		writeError(w, http.StatusBadRequest, "generations must be at least 1")
		return Request{}, false
	}
	return req, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSireNotFound), errors.Is(err, ErrDamNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, pedigree.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pedigree.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, "pedigree store unavailable, please retry")
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
