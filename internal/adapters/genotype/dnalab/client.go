// Package dnalab lee perfiles de ADN desde la API del laboratorio.
// Es solo lectura: implementa genetics.Source.
package dnalab

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pedigree-genetics/internal/domain/genetics"
	"pedigree-genetics/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("dna lab client not configured")
	ErrUnauthorized  = errors.New("dna lab unauthorized")
	ErrUpstream      = errors.New("dna lab upstream error")
)

type Config struct {
	BaseURL string
	APIKey  string

	APIKeyHeader string
	Timeout      time.Duration
}

type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrNotConfigured
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc, err := httpclient.New(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "X-Api-Key"
	}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		hc.Headers = map[string]string{header: key}
	}
	return &Client{http: hc}, nil
}

// HTTPClient expone el *http.Client subyacente (tests con httpmock).
func (c *Client) HTTPClient() *http.Client { return c.http.HTTP }

type profileResponse struct {
	DogID         string            `json:"dogId"`
	Breed         string            `json:"breed"`
	Lab           string            `json:"lab"`
	TestedAt      string            `json:"testedAt"`
	Loci          map[string]string `json:"loci"`
	HealthMarkers map[string]string `json:"healthMarkers"`
}

// Get devuelve (nil, nil) si el laboratorio no tiene resultados del perro.
func (c *Client) Get(ctx context.Context, dogID string) (*genetics.GenotypeProfile, error) {
	dogID = strings.TrimSpace(dogID)
	if dogID == "" {
		return nil, nil
	}

	var out profileResponse
	err := c.http.GetJSON(ctx, "/v1/dogs/"+url.PathEscape(dogID)+"/genotype", &out)
	switch code := httpclient.StatusCode(err); {
	case err == nil:
	case code == http.StatusNotFound:
		return nil, nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return toProfile(dogID, out), nil
}

// toProfile descarta estados de salud que no se reconocen en vez de fallar:
// un marcador ilegible queda como "sin resultado".
func toProfile(dogID string, in profileResponse) *genetics.GenotypeProfile {
	p := &genetics.GenotypeProfile{
		DogID:         dogID,
		Breed:         strings.TrimSpace(in.Breed),
		Lab:           strings.TrimSpace(in.Lab),
		Loci:          map[string]string{},
		HealthMarkers: map[string]genetics.HealthStatus{},
	}
	for k, v := range in.Loci {
		if k = strings.TrimSpace(k); k != "" && strings.TrimSpace(v) != "" {
			p.Loci[k] = strings.TrimSpace(v)
		}
	}
	for k, v := range in.HealthMarkers {
		status, err := genetics.ParseHealthStatus(v)
		if err != nil || strings.TrimSpace(k) == "" {
			continue
		}
		p.HealthMarkers[strings.TrimSpace(k)] = status
	}
	if t, err := time.Parse(time.DateOnly, strings.TrimSpace(in.TestedAt)); err == nil {
		p.TestedAt = &t
		p.UpdatedAt = t
	}
	return p
}
