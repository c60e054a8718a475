package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	api "github.com/SAP/stewardci-provenance/pkg/apis/provenance/v1alpha1"
	"github.com/SAP/stewardci-provenance/pkg/client"
)

const defaultServer = "http://localhost:8080"

type options struct {
	server string
	build  api.BuildRef
}

// NewRootCommand returns the provenancectl command with all subcommands.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "provenancectl",
		Short: "Record and verify the provenance of build artifacts",
		Long: "provenancectl fingerprints the artifacts of builds and verifies\n" +
			"which build originally produced a file, using a provenance server.",
		SilenceUsage: true,
	}

	server := os.Getenv("PROVENANCE_SERVER")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", server, "Base URL of the provenance server (env PROVENANCE_SERVER)")

	rootCmd.AddCommand(newFingerprintCommand(opts))
	rootCmd.AddCommand(newVerifyCommand(opts))
	rootCmd.AddCommand(newLookupCommand(opts))
	return rootCmd
}

func (o *options) client() *client.Client {
	return client.New(o.server)
}

func addBuildFlags(cmd *cobra.Command, opts *options, required bool) {
	cmd.Flags().StringVar(&opts.build.Job, "job", "", "Name of the job")
	cmd.Flags().IntVar(&opts.build.Number, "build", 0, "Number of the build")
	if required {
		cmd.MarkFlagRequired("job")
		cmd.MarkFlagRequired("build")
	}
}

func printYAML(cmd *cobra.Command, value interface{}) error {
	encoder := yaml.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	return encoder.Close()
}
