package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/weiihann/threadbench/config"
	"github.com/weiihann/threadbench/harness"
)

func newVariantsCmd() *cobra.Command {
	var (
		configPath string
		releaseDir string
	)

	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List configured variants and their executables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()

			if configPath != "" {
				var err error

				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}

			if cmd.Flags().Changed("release-dir") {
				cfg.ReleaseDir = releaseDir
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Label", "Program", "Path", "Found"})

			for _, v := range cfg.Variants {
				path := harness.ResolveBinary(cfg.ReleaseDir, v.Program)
				_, err := os.Stat(path)

				table.Append([]string{v.Label, v.Program, path, fmt.Sprint(err == nil)})
			}

			table.Render()

			fmt.Fprintf(cmd.OutOrStdout(), "Known programs: %v\n", harness.KnownPrograms())

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"Sweep configuration file (YAML or JSON)")
	cmd.Flags().StringVar(&releaseDir, "release-dir", config.DefaultReleaseDir,
		"Directory holding the benchmark executables")

	return cmd
}
