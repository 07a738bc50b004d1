package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title Pedigree & Genetics API
// @version 1.0
// @description Pedigree, coeficiente de consanguinidad y predicción genética para criadores de perros.
// @BasePath /
func main() {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Pedigree & genetics engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCommand(), coiCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
