package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/avi-report-etl/internal/avtime"
	"github.com/couchcryptid/avi-report-etl/internal/domain"
)

// errIncomplete is returned when a document still holds unresolved times.
var errIncomplete = errors.New("report times not fully resolved")

func newRootCmd() *cobra.Command {
	var now string

	root := &cobra.Command{
		Use:   "avtime",
		Short: "Resolve partial aviation report times",
		Long: `avtime resolves the partial day/hour/minute times found in aviation
weather reports into full timestamps.

Fragments are accepted in ISO-style notation ("--27T01:00Z", "T06Z") or as
TAC groups ("270100Z", "2706", "2706/2812").`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if now == "" {
				domain.SetClock(nil)
				return nil
			}
			t, err := time.Parse(time.RFC3339, now)
			if err != nil {
				return fmt.Errorf("--now: %w", err)
			}
			domain.SetClock(clockwork.NewFakeClockAt(t))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&now, "now", "", "pin the current time (RFC 3339), used as fallback anchor and completion stamp")

	root.AddCommand(resolveCmd())
	root.AddCommand(completeCmd())
	root.AddCommand(checkCmd())
	return root
}

func resolveCmd() *cobra.Command {
	var (
		anchor      string
		direction   string
		maxDuration time.Duration
	)
	cmd := &cobra.Command{
		Use:   "resolve FRAGMENT",
		Short: "Resolve one fragment or validity group against an anchor",
		Long: `Resolve a fragment to the full timestamp closest to the anchor.

A DDHH/DDHH validity group is resolved as a period: the start nearest to the
anchor, the end forward from the start.

Example:
  avtime resolve --anchor 2020-02-27T01:05:00Z 270100Z
  avtime resolve --anchor 2020-02-27T01:05:00Z --direction forward -- --28T00:00Z
  avtime resolve --anchor 2020-02-27T05:00:00Z --max-duration 30h 2706/2812`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, err := parseAnchor(anchor)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if start, end, err := avtime.ParseValidity(args[0]); err == nil {
				p, err := avtime.ResolvePeriod(avtime.UnresolvedPeriod(start, end), at, maxDuration)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, p)
				return nil
			}

			dir, err := avtime.ParseDirection(direction)
			if err != nil {
				return err
			}
			frag, err := parseFragment(args[0])
			if err != nil {
				return err
			}
			t, err := avtime.Resolve(frag, at, dir)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, t.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&anchor, "anchor", "", "anchor time (RFC 3339), defaults to now")
	cmd.Flags().StringVar(&direction, "direction", "nearest", "nearest, forward or backward")
	cmd.Flags().DurationVar(&maxDuration, "max-duration", 0, "longest plausible validity period, 0 for unbounded")
	return cmd
}

func completeCmd() *cobra.Command {
	var (
		reference    string
		allowPartial bool
		bounds       = domain.DefaultValidityBounds()
	)
	cmd := &cobra.Command{
		Use:   "complete [FILE]",
		Short: "Complete every time of a report envelope",
		Long: `Read a report envelope from FILE (or stdin) and print the completion result.

The anchor is the envelope's referenceTime, then --reference, then the
current time. The command fails when a field could not be resolved unless
--allow-partial is set; the partial result is printed either way.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			raw := domain.RawEvent{Value: data}
			if reference != "" {
				raw.Headers = map[string]string{domain.HeaderReferenceTime: reference}
			}
			parsed, err := domain.ParseRawEvent(raw)
			if err != nil {
				return err
			}

			completed, cerr := domain.CompleteAllTimes(parsed.Report, parsed.ReferenceTime, bounds)
			var pce *domain.PartialCompletionError
			if cerr != nil && !errors.As(cerr, &pce) {
				return cerr
			}
			if err := writeJSON(cmd.OutOrStdout(), domain.NewCompletionResult(parsed, completed, cerr)); err != nil {
				return err
			}
			if pce != nil && !allowPartial {
				return cerr
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&reference, "reference", "", "reference time (RFC 3339) for envelopes without one")
	cmd.Flags().BoolVar(&allowPartial, "allow-partial", false, "exit zero when some times stay unresolved")
	cmd.Flags().DurationVar(&bounds.TAF, "max-validity-taf", bounds.TAF, "longest TAF validity")
	cmd.Flags().DurationVar(&bounds.SIGMET, "max-validity-sigmet", bounds.SIGMET, "longest SIGMET validity")
	cmd.Flags().DurationVar(&bounds.AIRMET, "max-validity-airmet", bounds.AIRMET, "longest AIRMET validity")
	cmd.Flags().DurationVar(&bounds.Trend, "max-trend-period", bounds.Trend, "longest METAR trend period")
	cmd.Flags().DurationVar(&bounds.Generic, "max-validity-generic", bounds.Generic, "longest generic message validity, 0 for unbounded")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [FILE]",
		Short: "Report whether every time of an envelope is resolved",
		Long: `Read a report envelope from FILE (or stdin) and report whether all of its
times, including any referenced report, carry a full timestamp. Nothing is
resolved. The command fails when any time is missing one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			_, report, err := domain.DecodeEnvelope(data)
			if err != nil {
				return err
			}
			if !domain.IsFullyResolved(report) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: incomplete\n", report.Kind(), report.Originator())
				return errIncomplete
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: complete\n", report.Kind(), report.Originator())
			return nil
		},
	}
}

// parseFragment accepts fragment notation or a DDHHMMZ / DDHH TAC group.
func parseFragment(s string) (avtime.Partial, error) {
	if p, err := avtime.ParseDayHourMinute(s); err == nil {
		return p, nil
	}
	if p, err := avtime.ParseDayHour(s); err == nil {
		return p, nil
	}
	return avtime.ParsePartial(s)
}

func parseAnchor(s string) (time.Time, error) {
	if s == "" {
		return domain.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--anchor: %w", err)
	}
	return t, nil
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
