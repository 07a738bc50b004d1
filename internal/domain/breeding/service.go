package breeding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pedigree-genetics/internal/domain/advisory"
	"pedigree-genetics/internal/domain/coi"
	"pedigree-genetics/internal/domain/dogs"
	"pedigree-genetics/internal/domain/genetics"
	"pedigree-genetics/internal/domain/pedigree"
	"pedigree-genetics/internal/platform/logger"
	"pedigree-genetics/internal/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrSireNotFound = errors.New("sire not found")
	ErrDamNotFound  = errors.New("dam not found")
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// TreeBuilder es el Ancestry Tree Builder visto desde este módulo.
type TreeBuilder interface {
	Build(ctx context.Context, dogID string, maxGenerations int) (*pedigree.Tree, error)
}

type Deps struct {
	Trees      TreeBuilder
	Calculator *coi.Calculator
	Predictor  *genetics.Predictor
	Composer   *advisory.Composer
	Genotypes  genetics.Source

	// Opcionales.
	Analyses AnalysisLog
	Cache    ReportCache
	Metrics  *metrics.Metrics
	Logger   logger.Logger

	DefaultGenerations int
	MaxGenerations     int
}

type Service struct {
	trees      TreeBuilder
	calculator *coi.Calculator
	predictor  *genetics.Predictor
	composer   *advisory.Composer
	genotypes  genetics.Source
	analyses   AnalysisLog
	cache      ReportCache
	metrics    *metrics.Metrics
	log        logger.Logger

	defaultGenerations int
	maxGenerations     int

	now func() time.Time
}

func NewService(d Deps) *Service {
	s := &Service{
		trees:              d.Trees,
		calculator:         d.Calculator,
		predictor:          d.Predictor,
		composer:           d.Composer,
		genotypes:          d.Genotypes,
		analyses:           d.Analyses,
		cache:              d.Cache,
		metrics:            d.Metrics,
		log:                d.Logger,
		defaultGenerations: d.DefaultGenerations,
		maxGenerations:     d.MaxGenerations,
		now:                time.Now,
	}
	if s.calculator == nil {
		s.calculator = coi.NewCalculator(nil)
	}
	if s.predictor == nil {
		s.predictor = genetics.NewPredictor(nil)
	}
	if s.composer == nil {
		s.composer = advisory.NewComposer(nil)
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.maxGenerations <= 0 {
		s.maxGenerations = 10
	}
	if s.defaultGenerations <= 0 || s.defaultGenerations > s.maxGenerations {
		s.defaultGenerations = min(5, s.maxGenerations)
	}
	return s
}

// CalculateCOI calcula (o toma de cache) el COI de la pareja y lo registra en el historial.
func (s *Service) CalculateCOI(ctx context.Context, userID string, req Request) (COIReport, error) {
	start := s.now()
	gens, err := s.validate(userID, req)
	if err != nil {
		return COIReport{}, err
	}

	report, err := s.coiReport(ctx, req, gens)
	if err != nil {
		return COIReport{}, err
	}

	report.AnalysisID = s.record(ctx, userID, KindCOI, req, gens, report.Result, report)
	s.metrics.ObserveAnalysis(string(KindCOI), string(report.RiskLevel), report.CoiPercentage, report.IsEstimate, s.now().Sub(start))
	return report, nil
}

// Compatibility suma al COI la predicción genética de la cría y las recomendaciones completas.
func (s *Service) Compatibility(ctx context.Context, userID string, req Request) (CompatibilityReport, error) {
	start := s.now()
	gens, err := s.validate(userID, req)
	if err != nil {
		return CompatibilityReport{}, err
	}

	report, err := s.coiReport(ctx, req, gens)
	if err != nil {
		return CompatibilityReport{}, err
	}

	sireG, damG := s.fetchGenotypes(ctx, report.Sire.ID, report.Dam.ID)
	pred := s.predictor.Predict(genetics.Parents{
		Sire:      sireG,
		Dam:       damG,
		SireBreed: report.Sire.Breed,
		DamBreed:  report.Dam.Breed,
	}, req.Loci)

	recs := s.composer.Compose(report.Result, &pred)
	report.Recommendations = recs

	out := CompatibilityReport{
		COI:             report,
		Genetics:        pred,
		Recommendations: recs,
		HealthWarnings:  pred.Warnings,
		IsEstimate:      report.IsEstimate || pred.IsEstimate,
		AnalysisDate:    s.now().UTC(),
	}
	out.AnalysisID = s.record(ctx, userID, KindCompatibility, req, gens, report.Result, out)
	s.metrics.ObserveAnalysis(string(KindCompatibility), string(report.RiskLevel), report.CoiPercentage, out.IsEstimate, s.now().Sub(start))
	return out, nil
}

// Predict predice directamente desde genotipos crudos (sin pedigree ni historial).
func (s *Service) Predict(in genetics.Parents, loci []string) (genetics.OffspringPrediction, error) {
	if in.Sire == nil && in.Dam == nil && strings.TrimSpace(in.SireBreed) == "" && strings.TrimSpace(in.DamBreed) == "" {
		return genetics.OffspringPrediction{}, fmt.Errorf("%w: at least one genotype profile or breed is required", ErrInvalidInput)
	}
	return s.predictor.Predict(in, loci), nil
}

// History lista los análisis del usuario, más recientes primero.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]Analysis, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	if s.analyses == nil {
		return []Analysis{}, nil
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	return s.analyses.ListByUser(ctx, strings.TrimSpace(userID), limit)
}

func (s *Service) DefaultGenerations() int { return s.defaultGenerations }

func (s *Service) validate(userID string, req Request) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	sire, dam := strings.TrimSpace(req.SireID), strings.TrimSpace(req.DamID)
	if sire == "" || dam == "" {
		return 0, fmt.Errorf("%w: sireId and damId are required", ErrInvalidInput)
	}
	if sire == dam {
		return 0, fmt.Errorf("%w: sire and dam must be different dogs", ErrInvalidInput)
	}

	gens := req.Generations
	if gens == 0 {
		gens = s.defaultGenerations
	}
	if gens < 1 || gens > s.maxGenerations {
		return 0, fmt.Errorf("%w: generations must be between 1 and %d", ErrInvalidInput, s.maxGenerations)
	}
	return gens, nil
}

func (s *Service) coiReport(ctx context.Context, req Request, gens int) (COIReport, error) {
	sireID, damID := strings.TrimSpace(req.SireID), strings.TrimSpace(req.DamID)
	key := cacheKey(sireID, damID, gens)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("coi cache read failed", map[string]any{"key": key, "error": err.Error()})
		}
		s.metrics.CacheLookup(ok)
		if ok {
			return reportFrom(cached, true), nil
		}
	}

	cached, err := s.compute(ctx, sireID, damID, gens)
	if err != nil {
		return COIReport{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cached); err != nil {
			s.log.Warn("coi cache write failed", map[string]any{"key": key, "error": err.Error()})
		}
	}
	return reportFrom(cached, false), nil
}

func (s *Service) compute(ctx context.Context, sireID, damID string, gens int) (CachedCOI, error) {
	var sireTree, damTree *pedigree.Tree

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := s.trees.Build(gctx, sireID, gens)
		if err != nil {
			return roleError(err, ErrSireNotFound, sireID)
		}
		sireTree = t
		return nil
	})
	g.Go(func() error {
		t, err := s.trees.Build(gctx, damID, gens)
		if err != nil {
			return roleError(err, ErrDamNotFound, damID)
		}
		damTree = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return CachedCOI{}, err
	}

	sire, dam := sireTree.Root.Dog, damTree.Root.Dog
	if sire.Sex == dogs.SexFemale {
		return CachedCOI{}, fmt.Errorf("%w: sire %s is female", ErrInvalidInput, sire.ID)
	}
	if dam.Sex == dogs.SexMale {
		return CachedCOI{}, fmt.Errorf("%w: dam %s is male", ErrInvalidInput, dam.ID)
	}

	warnings := append(append([]pedigree.IntegrityWarning{}, sireTree.Warnings...), damTree.Warnings...)
	for _, w := range warnings {
		s.log.Warn("pedigree integrity warning", map[string]any{
			"kind":   string(w.Kind),
			"dog_id": w.DogID,
			"ref":    w.Ref,
			"detail": w.Message,
		})
	}
	s.metrics.IntegrityWarnings(len(warnings))

	res, err := s.calculator.Calculate(sireTree, damTree)
	if err != nil {
		return CachedCOI{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	res.Recommendations = s.composer.Compose(res, nil)

	return CachedCOI{Result: res, Sire: sire, Dam: dam, Warnings: warnings}, nil
}

// fetchGenotypes nunca falla: un perfil que no se pudo leer cuenta como ausente.
func (s *Service) fetchGenotypes(ctx context.Context, sireID, damID string) (*genetics.GenotypeProfile, *genetics.GenotypeProfile) {
	if s.genotypes == nil {
		return nil, nil
	}

	var sire, dam *genetics.GenotypeProfile
	var g errgroup.Group
	g.Go(func() error {
		sire = s.genotype(ctx, sireID)
		return nil
	})
	g.Go(func() error {
		dam = s.genotype(ctx, damID)
		return nil
	})
	_ = g.Wait()
	return sire, dam
}

func (s *Service) genotype(ctx context.Context, dogID string) *genetics.GenotypeProfile {
	p, err := s.genotypes.Get(ctx, dogID)
	if err != nil {
		s.log.Warn("genotype lookup failed; treating as missing", map[string]any{"dog_id": dogID, "error": err.Error()})
		return nil
	}
	return p
}

// record agrega el análisis al historial. Un fallo se loguea y no corta la respuesta.
func (s *Service) record(ctx context.Context, userID string, kind Kind, req Request, gens int, res coi.Result, full any) string {
	if s.analyses == nil {
		return ""
	}

	raw, err := json.Marshal(full)
	if err != nil {
		s.log.Error("analysis marshal failed", map[string]any{"error": err.Error()})
		return ""
	}

	a := Analysis{
		ID:            uuid.NewString(),
		UserID:        strings.TrimSpace(userID),
		Kind:          kind,
		SireID:        strings.TrimSpace(req.SireID),
		DamID:         strings.TrimSpace(req.DamID),
		Generations:   gens,
		COIPercentage: res.CoiPercentage,
		RiskLevel:     res.RiskLevel,
		IsEstimate:    res.IsEstimate,
		Result:        raw,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.analyses.Append(ctx, a); err != nil {
		s.log.Warn("analysis append failed", map[string]any{"analysis_id": a.ID, "error": err.Error()})
		return ""
	}
	return a.ID
}

func roleError(err, notFound error, id string) error {
	if errors.Is(err, pedigree.ErrNotFound) {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return err
}

func cacheKey(sireID, damID string, gens int) string {
	return fmt.Sprintf("coi:%s:%s:%d", sireID, damID, gens)
}

func reportFrom(c CachedCOI, cached bool) COIReport {
	warnings := c.Warnings
	if warnings == nil {
		warnings = []pedigree.IntegrityWarning{}
	}
	return COIReport{
		Result:            c.Result,
		Sire:              c.Sire,
		Dam:               c.Dam,
		IntegrityWarnings: warnings,
		Cached:            cached,
	}
}
