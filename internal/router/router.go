package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "pedigree-genetics/docs"
	"pedigree-genetics/internal/adapters/cache/local"
	rediscache "pedigree-genetics/internal/adapters/cache/redis"
	"pedigree-genetics/internal/adapters/genotype/dnalab"
	mem "pedigree-genetics/internal/adapters/storage/memory"
	graph "pedigree-genetics/internal/adapters/storage/neo4j"
	pg "pedigree-genetics/internal/adapters/storage/postgres"
	"pedigree-genetics/internal/domain/advisory"
	"pedigree-genetics/internal/domain/breeding"
	"pedigree-genetics/internal/domain/breeds"
	"pedigree-genetics/internal/domain/coi"
	"pedigree-genetics/internal/domain/dogs"
	"pedigree-genetics/internal/domain/genetics"
	"pedigree-genetics/internal/domain/pedigree"
	"pedigree-genetics/internal/middleware"
	"pedigree-genetics/internal/platform/config"
	"pedigree-genetics/internal/platform/logger"
	"pedigree-genetics/internal/platform/metrics"
	"pedigree-genetics/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config config.Config
	Logger logger.Logger

	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Registry nil => uno nuevo (tests levantan varios routers).
	Registry *prometheus.Registry

	// Stores opcionales. Sin ninguno => in-memory.
	DB    *sql.DB
	Graph graph.Runner
	Redis *goredis.Client

	// Knowledge nil => breeds.Default() (o Config.BreedKnowledgeFile).
	Knowledge *breeds.Knowledge
}

func NewRouter(opts Options) (http.Handler, error) {
	cfg := opts.Config
	if cfg.MaxGenerations == 0 {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}

	knowledge, err := loadKnowledge(opts.Knowledge, cfg.BreedKnowledgeFile)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	s := selectStores(opts, log)

	// Services por módulo
	dogsSvc := dogs.NewService(s.dogs)

	builder := pedigree.NewBuilder(dogsSvc, cfg.MaxGenerations)

	genotypeSource := genetics.Source(s.genotypes)
	if cfg.GenotypeAPIURL != "" {
		lab, err := dnalab.NewClient(dnalab.Config{BaseURL: cfg.GenotypeAPIURL, APIKey: cfg.GenotypeAPIKey})
		if err != nil {
			return nil, fmt.Errorf("dna lab client: %w", err)
		}
		genotypeSource = genetics.FirstAvailable(s.genotypes, lab)
	}
	geneticsSvc := genetics.NewService(s.genotypes, genotypeSource, dogsSvc)

	breedingSvc := breeding.NewService(breeding.Deps{
		Trees:              builder,
		Calculator:         coi.NewCalculator(knowledge),
		Predictor:          genetics.NewPredictor(knowledge),
		Composer:           advisory.NewComposer(knowledge),
		Genotypes:          genotypeSource,
		Analyses:           s.analyses,
		Cache:              newCache(opts.Redis, cfg.CacheTTL),
		Metrics:            m,
		Logger:             log.With(map[string]any{"component": "breeding"}),
		DefaultGenerations: cfg.DefaultGenerations,
		MaxGenerations:     cfg.MaxGenerations,
	})

	// Rutas por módulo
	dogs.RegisterRoutes(r, dogsSvc)
	pedigree.RegisterRoutes(r, builder, cfg.DefaultGenerations)
	genetics.RegisterRoutes(r, geneticsSvc)
	breeding.RegisterRoutes(r, breedingSvc)

	return r, nil
}

type stores struct {
	dogs      dogs.Repository
	genotypes genetics.Repository
	analyses  breeding.AnalysisLog
}

// selectStores: dogs en Neo4j > Postgres > memoria; genotipos e historial en Postgres > memoria.
func selectStores(opts Options, log logger.Logger) stores {
	var s stores

	switch {
	case opts.Graph != nil:
		s.dogs = graph.NewDogsRepo(opts.Graph)
	case opts.DB != nil:
		s.dogs = pg.NewDogsRepo(opts.DB)
	default:
		s.dogs = mem.NewDogRepo()
	}

	if opts.DB != nil {
		s.genotypes = pg.NewGenotypesRepo(opts.DB)
		s.analyses = pg.NewAnalysesRepo(opts.DB)
	} else {
		s.genotypes = mem.NewGenotypeRepo()
		s.analyses = mem.NewAnalysesRepo()
	}

	log.Info("stores selected", map[string]any{
		"dogs":      fmt.Sprintf("%T", s.dogs),
		"genotypes": fmt.Sprintf("%T", s.genotypes),
		"analyses":  fmt.Sprintf("%T", s.analyses),
	})
	return s
}

func newCache(rdb *goredis.Client, ttl time.Duration) breeding.ReportCache {
	if ttl <= 0 {
		return nil
	}
	if rdb != nil {
		return rediscache.New(rdb, ttl)
	}
	return local.New(ttl, 2*ttl)
}

func loadKnowledge(k *breeds.Knowledge, file string) (*breeds.Knowledge, error) {
	if k != nil {
		return k, nil
	}
	if file == "" {
		return breeds.Default(), nil
	}
	loaded, err := breeds.Load(file)
	if err != nil {
		return nil, fmt.Errorf("breed knowledge: %w", err)
	}
	return loaded, nil
}

// Connections agrupa las conexiones externas que abre Connect.
type Connections struct {
	DB    *sql.DB
	Graph *graph.Executor
	Redis *goredis.Client
}

// Connect abre lo que la config pida. Un fallo en cualquiera es fatal:
// no se cae silenciosamente a memoria en producción.
func Connect(ctx context.Context, cfg config.Config) (*Connections, error) {
	c := &Connections{}

	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		if err := pg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		c.DB = db
	}

	if cfg.Neo4j.URI != "" {
		ex, err := graph.NewExecutor(cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, cfg.Neo4j.Database)
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		if err := ex.Verify(ctx); err != nil {
			_ = ex.Close(ctx)
			c.Close(ctx)
			return nil, fmt.Errorf("neo4j: %w", err)
		}
		if err := graph.NewDogsRepo(ex).EnsureSchema(ctx); err != nil {
			_ = ex.Close(ctx)
			c.Close(ctx)
			return nil, fmt.Errorf("neo4j: schema: %w", err)
		}
		c.Graph = ex
	}

	if cfg.RedisAddr != "" {
		rdb, err := rediscache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		c.Redis = rdb
	}

	return c, nil
}

func (c *Connections) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
	if c.Graph != nil {
		_ = c.Graph.Close(ctx)
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}

// Options arma las opciones del router a partir de las conexiones abiertas.
func (c *Connections) Options(cfg config.Config, log logger.Logger) Options {
	opts := Options{Config: cfg, Logger: log, DB: c.DB, Redis: c.Redis}
	if c.Graph != nil {
		opts.Graph = c.Graph
	}
	return opts
}
