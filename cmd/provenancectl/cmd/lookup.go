package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLookupCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup [DIGEST]",
		Short: "Show a registered fingerprint or the fingerprint record of a build",
		Example: `  provenancectl lookup 0cc175b9c0f1b6a831c399e269772661
  provenancectl lookup --job my-app --build 42`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			if len(args) == 1 {
				if opts.build.Job != "" || opts.build.Number != 0 {
					return fmt.Errorf("either a digest or --job and --build must be given")
				}
				entry, err := c.GetFingerprint(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printYAML(cmd, entry)
			}
			if opts.build.Job == "" || opts.build.Number < 1 {
				return fmt.Errorf("either a digest or --job and --build must be given")
			}
			record, err := c.GetRecord(cmd.Context(), opts.build)
			if err != nil {
				return err
			}
			return printYAML(cmd, record)
		},
	}
	addBuildFlags(cmd, opts, false)
	return cmd
}
