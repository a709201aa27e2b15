package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	domain "github.com/bryanwahyu/automaton-trust/internal/domain/assessment"
)

var (
	ledgerResult string
	ledgerFormat string
)

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.Flags().StringVar(&ledgerResult, "result", "", "Path to a result payload or poll response JSON")
	ledgerCmd.Flags().StringVarP(&ledgerFormat, "format", "f", "text", "Output format (text|json)")
	ledgerCmd.MarkFlagRequired("result")
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger --result <payload.json>",
	Short: "Explain a saved result offline: ledger, decision and policy grounding",
	Args:  cobra.NoArgs,
	RunE:  runLedger,
}

func runLedger(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(ledgerResult)
	if err != nil {
		return fmt.Errorf("read result: %w", err)
	}
	p, err := decodePayload(data)
	if err != nil {
		return err
	}
	rep := domain.BuildReport(p)

	out := cmd.OutOrStdout()
	switch ledgerFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	default:
		printReport(out, rep)
	}
	return nil
}

// decodePayload accepts the bare result object or the full
// {"job_id", "status", "result"} poll envelope.
func decodePayload(data []byte) (*domain.Payload, error) {
	var env struct {
		Status domain.Status   `json:"status"`
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	raw := data
	if env.Status != "" {
		if env.Status != domain.StatusComplete {
			return nil, fmt.Errorf("job is %s, not %s", env.Status, domain.StatusComplete)
		}
		raw = env.Result
	}
	var p domain.Payload
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
	}
	return &p, nil
}
