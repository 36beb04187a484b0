package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"token-risk-scanner/internal/domain"
)

func scanCmd(a *app) *cobra.Command {
	var (
		networks    string
		maxPer      int
		concurrency int
		asJSON      bool
		verdict     string
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one scan and print scored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if networks != "" {
				a.cfg.Networks = splitList(networks)
			}
			if maxPer > 0 {
				a.cfg.MaxPerNetwork = maxPer
			}
			if concurrency > 0 {
				a.cfg.Concurrency = concurrency
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			verdict = strings.ToUpper(verdict)
			if verdict != "" && !domain.Verdict(verdict).IsValid() {
				return fmt.Errorf("unknown verdict %q", verdict)
			}

			tokens, err := a.newScanner().Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan: %w", err)
			}

			tokens = filterVerdict(tokens, domain.Verdict(verdict))
			sort.SliceStable(tokens, func(i, j int) bool {
				return tokens[i].Risk.Score > tokens[j].Risk.Score
			})

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tokens)
			}
			return printTable(cmd.OutOrStdout(), tokens)
		},
	}
	cmd.Flags().StringVar(&networks, "networks", "", "comma-separated networks (overrides DS_NETWORKS)")
	cmd.Flags().IntVar(&maxPer, "max", 0, "max listings per network (overrides SCAN_MAX_PER_NETWORK)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent enrichments (overrides API_CONCURRENCY_LIMIT)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().StringVar(&verdict, "verdict", "", "only print tokens with this verdict (OK, CAUTION, RISKY)")
	return cmd
}

func filterVerdict(tokens []*domain.EnrichedToken, v domain.Verdict) []*domain.EnrichedToken {
	if v == "" {
		return tokens
	}
	var out []*domain.EnrichedToken
	for _, t := range tokens {
		if t.Risk.Verdict == v {
			out = append(out, t)
		}
	}
	return out
}

func printTable(w io.Writer, tokens []*domain.EnrichedToken) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NETWORK\tSYMBOL\tADDRESS\tLIQUIDITY\tSCORE\tVERDICT\tSOURCE\tFLAGS")
	for _, t := range tokens {
		source := "-"
		if p := t.PrimaryPayload(); p != nil {
			source = p.Provider.String()
		}
		labels := make([]string, len(t.Risk.Flags))
		for i, f := range t.Risk.Flags {
			labels[i] = f.Info().Label
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.0f\t%d\t%s\t%s\t%s\n",
			t.Listing.Network,
			t.Listing.BaseToken.Symbol,
			t.Listing.BaseToken.Address,
			t.Listing.LiquidityUSD,
			t.Risk.Score,
			t.Risk.Verdict,
			source,
			strings.Join(labels, ", "),
		)
	}
	return tw.Flush()
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
