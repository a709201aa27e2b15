package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/automaton-trust/internal/application/tracking"
)

var (
	submitURL   string
	submitFile  string
	submitWatch bool
)

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVar(&submitURL, "url", "", "GitHub repository URL")
	submitCmd.Flags().StringVar(&submitFile, "file", "", "Architecture PDF to upload")
	submitCmd.Flags().BoolVarP(&submitWatch, "watch", "w", false, "Poll until the job is terminal and print the report")
}

var submitCmd = &cobra.Command{
	Use:   "submit --url <github-url> --file <design.pdf>",
	Short: "Submit a repository and PDF for assessment",
	Args:  cobra.NoArgs,
	RunE:  runSubmit,
}

func runSubmit(cmd *cobra.Command, args []string) error {
	c := tracking.SubmitCommand{GithubURL: submitURL}
	if submitFile != "" {
		f, err := os.Open(submitFile)
		if err != nil {
			return fmt.Errorf("open pdf: %w", err)
		}
		defer f.Close()
		c.File = f
		c.FileName = filepath.Base(submitFile)
	}

	svc := newService(newTransport())
	defer svc.Close()

	res, err := svc.Submit(cmdContext(cmd), c)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job %s submitted (%s)\n", res.JobID, res.Status)
	if !submitWatch {
		return nil
	}
	return watchJob(cmdContext(cmd), out, svc, res.JobID)
}
