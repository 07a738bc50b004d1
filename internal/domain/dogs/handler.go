package dogs

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"pedigree-genetics/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/dogs", func(dr chi.Router) {
		dr.Post("/", createDogHandler(svc))
		dr.Get("/", listDogsHandler(svc))

		// Cualquier usuario autenticado puede consultar un perro (pedigrees son públicos entre criadores)
		dr.Get("/{dogID}", getDogHandler(svc))

		// Correcciones y parentesco: solo owner
		dr.Patch("/{dogID}", updateDogHandler(svc))
		dr.Put("/{dogID}/parents", setParentsHandler(svc))
	})
}

type createDogRequest struct {
	Name               string `json:"name"`
	Breed              string `json:"breed"`
	Color              string `json:"color"`
	Sex                string `json:"sex" enums:"male,female,unknown"`
	BirthDate          string `json:"birth_date"` // YYYY-MM-DD opcional
	RegistrationNumber string `json:"registration_number"`
	ImageURL           string `json:"image_url"`
	Notes              string `json:"notes"`
}

type updateDogRequest struct {
	Name               *string `json:"name"`
	Breed              *string `json:"breed"`
	Color              *string `json:"color"`
	Sex                *string `json:"sex"`
	RegistrationNumber *string `json:"registration_number"`
	ImageURL           *string `json:"image_url"`
	Notes              *string `json:"notes"`
	// birth_date se trata aparte (null = limpiar)
}

type setParentsRequest struct {
	SireID string `json:"sire_id"`
	DamID  string `json:"dam_id"`
}

type dogResponse struct {
	ID                 string     `json:"id"`
	OwnerUserID        string     `json:"owner_user_id"`
	Name               string     `json:"name"`
	Breed              string     `json:"breed"`
	Color              string     `json:"color"`
	Sex                Sex        `json:"sex"`
	BirthDate          *time.Time `json:"birth_date,omitempty"`
	RegistrationNumber string     `json:"registration_number"`
	ImageURL           string     `json:"image_url"`
	Notes              string     `json:"notes"`
	SireID             string     `json:"sire_id,omitempty"`
	DamID              string     `json:"dam_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type parentsResponse struct {
	DogID  string `json:"dog_id"`
	SireID string `json:"sire_id,omitempty"`
	DamID  string `json:"dam_id,omitempty"`
}

// createDogHandler godoc
// @Summary Registrar perro
// @Description Registra un perro del usuario autenticado. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags dogs
// @Accept json
// @Produce json
// @Param payload body createDogRequest true "Datos del perro; birth_date en formato YYYY-MM-DD"
// @Success 201 {object} dogResponse
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /dogs [post]
func createDogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req createDogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		var bd *time.Time
		if strings.TrimSpace(req.BirthDate) != "" {
			t, err := time.Parse("2006-01-02", req.BirthDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "birth_date must be YYYY-MM-DD")
				return
			}
			bd = &t
		}

		d, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:               req.Name,
			Breed:              req.Breed,
			Color:              req.Color,
			Sex:                req.Sex,
			BirthDate:          bd,
			RegistrationNumber: req.RegistrationNumber,
			ImageURL:           req.ImageURL,
			Notes:              req.Notes,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toDogResponse(d, ParentLink{}))
	}
}

func listDogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		out := make([]dogResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDogResponse(d, ParentLink{}))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getDogHandler godoc
// @Summary Obtener perro
// @Tags dogs
// @Produce json
// @Param dogID path string true "ID del perro"
// @Success 200 {object} dogResponse
// @Failure 401 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /dogs/{dogID} [get]
func getDogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		dogID := chi.URLParam(r, "dogID")
		d, err := svc.GetByID(r.Context(), dogID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		link, err := svc.GetParents(r.Context(), dogID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, toDogResponse(d, link))
	}
}

func updateDogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		dogID := chi.URLParam(r, "dogID")

		// Decodificamos a map primero para detectar presencia de "birth_date".
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		bd, err := parsePatchBirthDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// Re-marshal sin birth_date y decode estricto al struct para reutilizar tags
		var req updateDogRequest
		delete(raw, "birth_date")
		b, _ := json.Marshal(raw)
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), dogID, claims.UserID, UpdateProfileInput{
			Name:               req.Name,
			Breed:              req.Breed,
			Color:              req.Color,
			Sex:                req.Sex,
			BirthDate:          bd,
			RegistrationNumber: req.RegistrationNumber,
			ImageURL:           req.ImageURL,
			Notes:              req.Notes,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toDogResponse(updated, ParentLink{}))
	}
}

// setParentsHandler godoc
// @Summary Registrar padre y madre
// @Description Define sire/dam del perro. Solo el owner. Rechaza vínculos que harían al perro su propio ancestro.
// @Tags dogs
// @Accept json
// @Produce json
// @Param dogID path string true "ID del perro"
// @Param payload body setParentsRequest true "IDs de sire y dam (vacío = desconocido)"
// @Success 200 {object} parentsResponse
// @Failure 400 {object} errorResponse
// @Failure 403 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse "ciclo en el pedigree"
// @Router /dogs/{dogID}/parents [put]
func setParentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req setParentsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}

		link, err := svc.SetParents(r.Context(), chi.URLParam(r, "dogID"), claims.UserID, SetParentsInput{
			SireID: req.SireID,
			DamID:  req.DamID,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, parentsResponse{DogID: link.DogID, SireID: link.SireID, DamID: link.DamID})
	}
}

func parsePatchBirthDate(raw map[string]json.RawMessage) (PatchBirthDate, error) {
	v, exists := raw["birth_date"]
	if !exists {
		return PatchBirthDate{}, nil
	}
	if string(v) == "null" {
		return PatchBirthDate{Present: true}, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return PatchBirthDate{}, errors.New("birth_date must be YYYY-MM-DD or null")
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return PatchBirthDate{}, errors.New("birth_date must be YYYY-MM-DD or null")
	}
	return PatchBirthDate{Present: true, Value: &t}, nil
}

func toDogResponse(d Dog, link ParentLink) dogResponse {
	return dogResponse{
		ID:                 d.ID,
		OwnerUserID:        d.OwnerUserID,
		Name:               d.Name,
		Breed:              d.Breed,
		Color:              d.Color,
		Sex:                d.Sex,
		BirthDate:          d.BirthDate,
		RegistrationNumber: d.RegistrationNumber,
		ImageURL:           d.ImageURL,
		Notes:              d.Notes,
		SireID:             link.SireID,
		DamID:              link.DamID,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "dog not found")
	case errors.Is(err, ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, ErrCycle):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON/writeError están duplicados intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
