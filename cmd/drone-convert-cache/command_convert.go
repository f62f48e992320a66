package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourceplane/drone-convert-cache/internal/cachedir"
	"github.com/sourceplane/drone-convert-cache/internal/config"
	"github.com/sourceplane/drone-convert-cache/internal/rewrite"
)

var (
	convertFile   string
	convertOutput string
)

var convertViper = config.NewViper()

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Rewrite a pipeline configuration file",
	Long: "Apply the cache conversion to a local configuration file, writing the result to " +
		"a file or stdout. Reads CACHE_* settings from the environment exactly like the server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return convertConfig()
	},
}

func registerConvertCommand(root *cobra.Command) {
	root.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertFile, "file", "f", ".drone.yml", "Path to the pipeline configuration (- for stdin)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "-", "Output path (- for stdout)")
	convertCmd.Flags().String("image", config.DefaultImage, "Container image for generated cache steps")
	convertCmd.Flags().String("cache-path", config.DefaultCachePath, "Host directory backing the shared cache volume")

	_ = convertViper.BindPFlag("image", convertCmd.Flags().Lookup("image"))
	_ = convertViper.BindPFlag("cache-path", convertCmd.Flags().Lookup("cache-path"))
}

func convertConfig() error {
	cfg, err := config.Load(convertViper)
	if err != nil {
		return err
	}

	if convertOutput != "-" {
		fmt.Printf("□ Rewriting %s...\n", convertFile)
	}

	data, err := readConfigFile(convertFile)
	if err != nil {
		return err
	}

	rewriter := rewrite.NewRewriter(cachedir.Default(), rewrite.Params{
		Image:     cfg.Image,
		CachePath: cfg.CachePath,
		Environ:   config.EnvironMap(os.Environ()),
	})

	res, err := rewriter.Rewrite(string(data))
	if err != nil {
		return err
	}

	if convertOutput == "-" {
		fmt.Print(res.Config)
		return nil
	}

	if err := os.WriteFile(convertOutput, []byte(res.Config), 0644); err != nil {
		return fmt.Errorf("failed to write output %s: %w", convertOutput, err)
	}

	fmt.Printf("✓ Rewrote %d of %d documents\n", res.Changed, res.Documents)
	fmt.Printf("✓ Saved to: %s\n", convertOutput)

	return nil
}

func readConfigFile(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return data, nil
}
