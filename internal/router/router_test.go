package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pedigree-genetics/internal/platform/config"
	"pedigree-genetics/internal/router"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	h, err := router.NewRouter(router.Options{Config: config.Default()})
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_FullSiblingMating(t *testing.T) {
	ts := newServer(t)
	owner := "breeder-1"

	// 1) Abuelos no emparentados, padres hermanos completos
	gs := createDog(t, ts.URL, owner, "Grandsire", "male")
	gd := createDog(t, ts.URL, owner, "Granddam", "female")
	sire := createDog(t, ts.URL, owner, "Rex", "male")
	dam := createDog(t, ts.URL, owner, "Bella", "female")
	setParents(t, ts.URL, owner, sire, gs, gd)
	setParents(t, ts.URL, owner, dam, gs, gd)

	// 2) Pedigree de Rex: 1 generación conocida
	{
		st, body := doReq(t, ts.URL, "GET", "/dogs/"+sire+"/pedigree?generations=3", owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 pedigree, got %d body=%s", st, string(body))
		}
		var out struct {
			Depth int `json:"depth"`
			Root  struct {
				Sire struct {
					Dog struct {
						Name string `json:"name"`
					} `json:"dog"`
				} `json:"sire"`
			} `json:"root"`
		}
		decode(t, body, &out)
		if out.Depth != 1 || out.Root.Sire.Dog.Name != "Grandsire" {
			t.Fatalf("unexpected pedigree: %s", string(body))
		}
	}

	// 3) COI de la cruza
	{
		st, body := doReq(t, ts.URL, "POST", "/breeding/coi", owner, map[string]any{
			"sireId": sire, "damId": dam, "generations": 3,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 coi, got %d body=%s", st, string(body))
		}
		var out struct {
			CoiPercentage float64 `json:"coiPercentage"`
			RiskLevel     string  `json:"riskLevel"`
			IsEstimate    bool    `json:"isEstimate"`
			KeyAncestors  []struct {
				Name string `json:"name"`
			} `json:"keyAncestors"`
			Recommendations []string `json:"recommendations"`
		}
		decode(t, body, &out)
		if out.CoiPercentage != 25 || out.RiskLevel != "High" {
			t.Fatalf("expected 25%% High, got %v %s", out.CoiPercentage, out.RiskLevel)
		}
		// padres con solo 1 generación conocida => estimado
		if !out.IsEstimate {
			t.Fatalf("expected estimate flag for shallow pedigree")
		}
		if len(out.KeyAncestors) != 2 || len(out.Recommendations) == 0 {
			t.Fatalf("unexpected coi body=%s", string(body))
		}
	}

	// 4) Genotipos + compatibilidad
	putGenotype(t, ts.URL, owner, sire, map[string]any{
		"loci":          map[string]string{"B": "B/b"},
		"healthMarkers": map[string]string{"PRA": "carrier"},
	})
	putGenotype(t, ts.URL, owner, dam, map[string]any{
		"loci":          map[string]string{"B": "B/b"},
		"healthMarkers": map[string]string{"PRA": "N/x"},
	})
	{
		st, body := doReq(t, ts.URL, "POST", "/breeding/compatibility", owner, map[string]any{
			"sireId": sire, "damId": dam,
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 compatibility, got %d body=%s", st, string(body))
		}
		var out struct {
			HealthWarnings []string `json:"healthWarnings"`
			Genetics       struct {
				HealthMarkers []struct {
					BothCarriers bool    `json:"bothCarriers"`
					AtRisk       float64 `json:"atRisk"`
				} `json:"healthMarkers"`
			} `json:"genetics"`
		}
		decode(t, body, &out)
		if len(out.Genetics.HealthMarkers) != 1 || !out.Genetics.HealthMarkers[0].BothCarriers || out.Genetics.HealthMarkers[0].AtRisk != 25 {
			t.Fatalf("unexpected genetics: %s", string(body))
		}
		if len(out.HealthWarnings) == 0 {
			t.Fatalf("expected health warnings")
		}
	}

	// 5) Historial: dos análisis, el más reciente primero
	{
		st, body := doReq(t, ts.URL, "GET", "/breeding/analyses", owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 analyses, got %d body=%s", st, string(body))
		}
		var out []struct {
			Kind string `json:"kind"`
		}
		decode(t, body, &out)
		if len(out) != 2 || out[0].Kind != "compatibility" {
			t.Fatalf("unexpected history: %s", string(body))
		}
	}

	// 6) Métricas expuestas
	{
		st, body := doReq(t, ts.URL, "GET", "/metrics", "", nil)
		if st != http.StatusOK || !strings.Contains(string(body), "breeding_analyses_total") {
			t.Fatalf("expected metrics, got %d", st)
		}
	}
}

func TestHTTP_BreedingErrors(t *testing.T) {
	ts := newServer(t)
	owner := "breeder-1"
	sire := createDog(t, ts.URL, owner, "Rex", "male")
	dam := createDog(t, ts.URL, owner, "Bella", "female")

	cases := []struct {
		name   string
		user   string
		body   map[string]any
		status int
	}{
		{"no user", "", map[string]any{"sireId": sire, "damId": dam}, http.StatusUnauthorized},
		{"unknown sire", owner, map[string]any{"sireId": "ghost", "damId": dam}, http.StatusNotFound},
		{"unknown dam", owner, map[string]any{"sireId": sire, "damId": "ghost"}, http.StatusNotFound},
		{"same dog", owner, map[string]any{"sireId": sire, "damId": sire}, http.StatusBadRequest},
		{"zero generations", owner, map[string]any{"sireId": sire, "damId": dam, "generations": 0}, http.StatusBadRequest},
		{"too many generations", owner, map[string]any{"sireId": sire, "damId": dam, "generations": 11}, http.StatusBadRequest},
		{"swapped sexes", owner, map[string]any{"sireId": dam, "damId": sire}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, "POST", "/breeding/coi", tc.user, tc.body)
			if st != tc.status {
				t.Fatalf("expected %d, got %d body=%s", tc.status, st, string(body))
			}
		})
	}
}

func TestHTTP_GenotypeOwnership(t *testing.T) {
	ts := newServer(t)
	dogID := createDog(t, ts.URL, "owner-1", "Rex", "male")

	st, _ := doReq(t, ts.URL, "PUT", "/dogs/"+dogID+"/genotype", "someone-else", map[string]any{
		"loci": map[string]string{"B": "B/b"},
	})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "GET", "/dogs/"+dogID+"/genotype", "owner-1", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 before upload, got %d", st)
	}
}

func TestHTTP_PredictWithoutPedigree(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "POST", "/breeding/predict", "u1", map[string]any{
		"sire": map[string]any{"loci": map[string]string{"E": "e/e"}},
		"dam":  map[string]any{"loci": map[string]string{"E": "e/e"}},
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 predict, got %d body=%s", st, string(body))
	}
	var out struct {
		Loci []struct {
			Locus string `json:"locus"`
		} `json:"loci"`
	}
	decode(t, body, &out)
	if len(out.Loci) != 1 || out.Loci[0].Locus != "E" {
		t.Fatalf("unexpected predict body=%s", string(body))
	}

	st, _ = doReq(t, ts.URL, "POST", "/breeding/predict", "u1", map[string]any{})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 with no input, got %d", st)
	}
}

func TestHTTP_PredictGenotypeNotationCarriers(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "POST", "/breeding/predict", "u1", map[string]any{
		"sire": map[string]any{"breed": "labrador", "healthMarkers": map[string]string{"PRA": "N/x"}},
		"dam":  map[string]any{"breed": "labrador", "healthMarkers": map[string]string{"PRA": "N/x"}},
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 predict, got %d body=%s", st, string(body))
	}
	var out struct {
		HealthMarkers []struct {
			Marker       string  `json:"marker"`
			AtRisk       float64 `json:"atRisk"`
			BothCarriers bool    `json:"bothCarriers"`
		} `json:"healthMarkers"`
		Warnings      []string `json:"warnings"`
		Unpredictable []any    `json:"unpredictable"`
	}
	decode(t, body, &out)
	if len(out.HealthMarkers) != 1 || out.HealthMarkers[0].Marker != "PRA" {
		t.Fatalf("expected PRA prediction, body=%s", string(body))
	}
	if out.HealthMarkers[0].AtRisk != 25 || !out.HealthMarkers[0].BothCarriers {
		t.Fatalf("expected 25%% at risk from carrier x carrier, body=%s", string(body))
	}
	if len(out.Unpredictable) != 0 {
		t.Fatalf("expected no unpredictable markers, body=%s", string(body))
	}
	if len(out.Warnings) != 1 || !strings.Contains(out.Warnings[0], "Both parents are carriers") {
		t.Fatalf("expected carrier warning, body=%s", string(body))
	}
}

func createDog(t *testing.T, baseURL, userID, name, sex string) string {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/dogs", userID, map[string]any{
		"name":  name,
		"breed": "labrador",
		"sex":   sex,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create dog, got %d body=%s", st, string(body))
	}
	var out struct {
		ID string `json:"id"`
	}
	decode(t, body, &out)
	if out.ID == "" {
		t.Fatalf("missing dog id")
	}
	return out.ID
}

func setParents(t *testing.T, baseURL, userID, dogID, sireID, damID string) {
	t.Helper()
	st, body := doReq(t, baseURL, "PUT", "/dogs/"+dogID+"/parents", userID, map[string]any{
		"sire_id": sireID,
		"dam_id":  damID,
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 set parents, got %d body=%s", st, string(body))
	}
}

func putGenotype(t *testing.T, baseURL, userID, dogID string, payload map[string]any) {
	t.Helper()
	st, body := doReq(t, baseURL, "PUT", "/dogs/"+dogID+"/genotype", userID, payload)
	if st != http.StatusOK {
		t.Fatalf("expected 200 put genotype, got %d body=%s", st, string(body))
	}
}

func decode(t *testing.T, body []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("decode: %v body=%s", err, string(body))
	}
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
