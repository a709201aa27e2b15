package cli

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/automaton-trust/internal/application/tracking"
	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
	"github.com/bryanwahyu/automaton-trust/internal/infra/httpclient"
	"github.com/bryanwahyu/automaton-trust/internal/infra/mock"
)

var (
	serverURL    string
	useMock      bool
	pollInterval time.Duration
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:           "trustctl",
	Short:         "Submit trust assessments and read their score ledger",
	Long:          "Submits a GitHub repository and architecture PDF to the assessment service, polls the job until it is terminal, and explains the trust score.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	def := os.Getenv("TRUST_API_URL")
	if def == "" {
		def = "http://localhost:8000"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", def, "Assessment service base URL (env TRUST_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "Use the scripted mock service instead of --server")
	rootCmd.PersistentFlags().DurationVar(&pollInterval, "interval", tracking.DefaultInterval, "Pause between polls")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log poller transitions to stderr")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newTransport() domain.Transport {
	if useMock {
		return mock.New(mock.DefaultProcessingPolls)
	}
	return httpclient.New(serverURL, &http.Client{Timeout: 30 * time.Second})
}

func newService(t domain.Transport) *tracking.Service {
	logger := log.New(io.Discard, "", 0)
	if verbose {
		logger = log.New(os.Stderr, "trustctl ", log.LstdFlags)
	}
	return &tracking.Service{Transport: t, Interval: pollInterval, Logger: logger}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
