package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"pedigree-genetics/internal/adapters/storage/memory"
	"pedigree-genetics/internal/domain/advisory"
	"pedigree-genetics/internal/domain/breeding"
	"pedigree-genetics/internal/domain/breeds"
	"pedigree-genetics/internal/domain/coi"
	"pedigree-genetics/internal/domain/dogs"
	"pedigree-genetics/internal/domain/pedigree"
	"pedigree-genetics/internal/platform/config"
	"pedigree-genetics/internal/platform/logger"
	"pedigree-genetics/internal/platform/retry"

	"github.com/spf13/cobra"
)

type coiFlags struct {
	pedigreeFile  string
	sireID        string
	damID         string
	generations   int
	knowledgeFile string
	verbose       bool
}

func coiCommand() *cobra.Command {
	f := &coiFlags{}
	cmd := &cobra.Command{
		Use:   "coi",
		Short: "Compute the COI of a pairing from a YAML pedigree file",
		Long: `Compute Wright's coefficient of inbreeding for a hypothetical litter
of --sire x --dam using the dogs listed in --pedigree. Prints the report as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCOI(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVarP(&f.pedigreeFile, "pedigree", "p", "", "Path to the YAML pedigree file")
	cmd.Flags().StringVar(&f.sireID, "sire", "", "Sire dog id")
	cmd.Flags().StringVar(&f.damID, "dam", "", "Dam dog id")
	cmd.Flags().IntVarP(&f.generations, "generations", "g", config.DefaultGenerations, "Generations to analyse")
	cmd.Flags().StringVar(&f.knowledgeFile, "breeds", "", "Optional YAML file overriding breed knowledge")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Log integrity warnings to stderr")
	_ = cmd.MarkFlagRequired("pedigree")
	_ = cmd.MarkFlagRequired("sire")
	_ = cmd.MarkFlagRequired("dam")

	return cmd
}

func runCOI(ctx context.Context, f *coiFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}

	file, err := os.Open(f.pedigreeFile)
	if err != nil {
		return err
	}
	defer file.Close()

	repo, err := memory.LoadPedigree(ctx, file)
	if err != nil {
		return err
	}

	knowledge := breeds.Default()
	if f.knowledgeFile != "" {
		if knowledge, err = breeds.Load(f.knowledgeFile); err != nil {
			return err
		}
	}

	log := logger.Nop()
	if f.verbose {
		log = logger.New(logger.Options{Level: logger.Debug, Output: os.Stderr})
	}

	builder := pedigree.NewBuilder(dogs.NewService(repo), config.MaxGenerations)
	builder.SetRetryPolicy(retry.None())

	svc := breeding.NewService(breeding.Deps{
		Trees:          builder,
		Calculator:     coi.NewCalculator(knowledge),
		Composer:       advisory.NewComposer(knowledge),
		Logger:         log,
		MaxGenerations: config.MaxGenerations,
	})

	report, err := svc.CalculateCOI(ctx, "cli", breeding.Request{
		SireID:      f.sireID,
		DamID:       f.damID,
		Generations: f.generations,
	})
	if err != nil {
		return fmt.Errorf("coi: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
