package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
)

func newVerifyCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify FILE",
		Short: "Verify that a build originally produced a file",
		Long: `Verifies that FILE has been fingerprinted by the build and that the
build is the original producer of the file's fingerprint.
Exits with a non-zero code if verification fails.`,
		Example: `  provenancectl verify --job my-app --build 42 target/my-app.jar`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			response, err := opts.client().Verify(cmd.Context(), api.VerifyRequest{
				Job:      opts.build.Job,
				Build:    opts.build.Number,
				FileName: args[0],
			})
			if err != nil {
				return err
			}
			if err := printYAML(cmd, response); err != nil {
				return err
			}
			if !response.Verified {
				return fmt.Errorf("verification failed: %s", response.Failure)
			}
			return nil
		},
	}
	addBuildFlags(cmd, opts, true)
	return cmd
}
