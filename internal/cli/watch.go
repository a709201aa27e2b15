package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/automaton-trust/internal/application/tracking"
	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <job-id>",
	Short: "Poll an existing job until it is Complete or Failed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newService(newTransport())
		defer svc.Close()
		return watchJob(cmdContext(cmd), cmd.OutOrStdout(), svc, domain.JobID(args[0]))
	},
}

// watchJob blocks until id is terminal; Ctrl-C cancels the poller.
func watchJob(ctx context.Context, out io.Writer, svc *tracking.Service, id domain.JobID) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc.Track(id)
	fmt.Fprintf(out, "Waiting for %s ...\n", id)
	j, err := svc.Wait(ctx, id)
	if err != nil {
		svc.Cancel(id)
		return fmt.Errorf("stopped watching %s: %w", id, err)
	}

	switch j.Status {
	case domain.StatusComplete:
		printReport(out, domain.BuildReport(j.Result))
		return nil
	case domain.StatusFailed:
		return fmt.Errorf("assessment %s failed after %d poll(s): %s", id, j.Polls, j.Error)
	}
	return fmt.Errorf("assessment %s stopped in state %s", id, j.Status)
}
