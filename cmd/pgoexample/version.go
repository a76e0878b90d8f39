package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"pgoexample/internal/config"
)

func newVersionCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]string{
				"version": config.Version,
				"commit":  config.Commit,
				"date":    config.Date,
				"go":      runtime.Version(),
			}
			if *jsonOutput {
				return print(true, info, "")
			}
			fmt.Printf("pgoexample %s\ncommit: %s\nbuilt at: %s\ngo: %s\n", config.Version, config.Commit, config.Date, runtime.Version())
			return nil
		},
	}
}
