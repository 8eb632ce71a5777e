package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/nmicheli/concord/pkg/config"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a config file with the default settings",
		Description: `Creates a concord configuration file in the current directory
with the default settings. Use --output to pick a different location
and --lang to choose between TOML and YAML.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "concord.toml",
				Usage:   "Output file path",
			},
			&cli.StringFlag{
				Name:  "lang",
				Value: "toml",
				Usage: "Config language: toml or yaml",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite existing config file",
			},
		},
		Action: runInitCmd,
	}
}

func runInitCmd(c *cli.Context) error {
	outputPath := c.String("output")
	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig(c.String("lang"))
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Created %s", outputPath)
	fmt.Println("Edit this file to customize analysis settings.")
	return nil
}

func generateDefaultConfig(lang string) (string, error) {
	cfg := config.DefaultConfig()

	var content []byte
	var err error
	switch strings.ToLower(lang) {
	case "", "toml":
		content, err = toml.Marshal(cfg)
	case "yaml", "yml":
		content, err = yaml.Marshal(cfg)
	default:
		return "", fmt.Errorf("unsupported config language %q (want toml or yaml)", lang)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# Concord configuration\n\n")
	buf.Write(content)
	return buf.String(), nil
}
