package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/SAP/stewardci-provenance/pkg/fingerprinter"
)

func newFingerprintCommand(opts *options) *cobra.Command {
	var (
		workspace  string
		includes   []string
		allowEmpty bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Fingerprint the artifacts of a build",
		Long: `Computes the MD5 fingerprints of all files in the workspace matching
the include patterns and submits them as the fingerprint record of the
build. Patterns are relative to the workspace, "**" matches any number
of directories.`,
		Example: `  provenancectl fingerprint --job my-app --build 42 --include '**/target/*.jar'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := fingerprinter.Scan(cmd.Context(), workspace, includes)
			if err != nil {
				return err
			}
			if len(record) == 0 && !allowEmpty {
				return errors.Wrapf(fingerprinter.ErrNoMatches, "patterns %q in workspace %q", includes, workspace)
			}
			if !dryRun {
				if err := opts.client().PostRecord(cmd.Context(), opts.build, record); err != nil {
					return err
				}
			}
			return printYAML(cmd, record)
		},
	}

	addBuildFlags(cmd, opts, true)
	cmd.Flags().StringVarP(&workspace, "workspace", "w", ".", "Workspace directory of the build")
	cmd.Flags().StringSliceVarP(&includes, "include", "i", []string{"**"}, "Include patterns of files to fingerprint")
	cmd.Flags().BoolVar(&allowEmpty, "allow-empty", false, "Succeed if no file matches")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the record without submitting it")
	return cmd
}
