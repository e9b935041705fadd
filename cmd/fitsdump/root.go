package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:          "fitsdump [flags] file...",
		Short:        "Print the HDUs and header keys of FITS files",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, cfgFile)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.LogLevel}))

			reports, err := dumpFiles(cmd.Context(), args, cfg, logger)
			if err != nil {
				return err
			}
			var totals *summary
			if cfg.Summary {
				totals = summarize(reports)
			}
			if err := render(cmd.OutOrStdout(), cfg.Format, reports, totals); err != nil {
				return fmt.Errorf("writing %s output: %w", cfg.Format, err)
			}

			failed := 0
			for _, r := range reports {
				if r.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be read", failed, len(reports))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./.fitsdump.yaml)")
	defineFlags(flags)
	for _, name := range settings {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
	return cmd
}
