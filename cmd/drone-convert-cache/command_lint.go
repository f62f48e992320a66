package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourceplane/drone-convert-cache/internal/cachedir"
	"github.com/sourceplane/drone-convert-cache/internal/rewrite"
	"github.com/sourceplane/drone-convert-cache/internal/schema"
)

var (
	lintFile   string
	lintStrict bool
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate pipeline documents and their cache declarations",
	Long: "Check every pipeline document in a configuration against the pipeline schema and " +
		"warn about cache kinds the converter does not know.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return lintConfig()
	},
}

func registerLintCommand(root *cobra.Command) {
	root.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFile, "file", "f", ".drone.yml", "Path to the pipeline configuration (- for stdin)")
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "Treat unknown cache kinds as errors")
}

func lintConfig() error {
	data, err := readConfigFile(lintFile)
	if err != nil {
		return err
	}

	docs, err := rewrite.ParseStream(string(data))
	if err != nil {
		return err
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}

	failed := 0
	for i, doc := range docs {
		root, ok := doc.(map[string]interface{})
		if !ok || root["kind"] != "pipeline" {
			continue
		}

		name := fmt.Sprintf("document %d", i)
		if s, ok := root["name"].(string); ok && s != "" {
			name = s
		}

		if err := validator.ValidatePipeline(doc); err != nil {
			fmt.Printf("✗ %s: %v\n", name, err)
			failed++
			continue
		}

		unknown := schema.UnknownCaches(doc, cachedir.Default())
		for _, kind := range unknown {
			fmt.Printf("! %s: unknown cache kind %q\n", name, kind)
		}
		if lintStrict && len(unknown) > 0 {
			failed++
			continue
		}

		fmt.Printf("✓ %s\n", name)
	}

	if failed > 0 {
		return fmt.Errorf("%d pipeline(s) failed lint", failed)
	}
	return nil
}
