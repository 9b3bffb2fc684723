package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/hitl"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and resolve pending human-in-the-loop sessions",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions waiting for a human, newest first",
	RunE:  runList,
}

var statusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Show the full state of one session",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <session-id>",
	Short: "Submit a resolution so the session can be resumed",
	Long: `Submits human-provided input for a suspended session: a solved CAPTCHA
token, a replacement cookie jar, form values, or any combination. At least
one of --token, --cookies-file or --data is required.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <session-id>",
	Short: "Discard a session and its resolution",
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

var (
	listJSON         bool
	statusJSON       bool
	statusScreenshot string
	resolveToken     string
	resolveCookies   string
	resolveData      []string
)

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Emit the listing as JSON")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Emit the report as JSON")
	statusCmd.Flags().StringVar(&statusScreenshot, "screenshot", "", "Write the checkpoint screenshot (PNG) to a file")
	resolveCmd.Flags().StringVar(&resolveToken, "token", "", "Solved CAPTCHA token")
	resolveCmd.Flags().StringVar(&resolveCookies, "cookies-file", "", "JSON file with a replacement cookie jar")
	resolveCmd.Flags().StringArrayVar(&resolveData, "data", nil, "Manual form value as key=value (repeatable)")

	sessionsCmd.AddCommand(listCmd, statusCmd, resolveCmd, cancelCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	summaries := rt.manager.List(context.Background())

	if listJSON {
		return printJSON(summaries)
	}
	if len(summaries) == 0 {
		fmt.Println("No sessions are waiting for a human.")
		return nil
	}
	for _, s := range summaries {
		fmt.Printf("%s  age %ds  ttl %ds  %s\n", s.SessionID, s.AgeSeconds, s.TTLSeconds, s.Reason)
		fmt.Printf("    %s  (signal %s)\n", s.CurrentURL, s.MatchedSignal)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	report, err := rt.manager.Status(context.Background(), args[0])
	if err != nil {
		return err
	}
	if !report.Found {
		return fmt.Errorf("session %s not found or expired", args[0])
	}

	if statusScreenshot != "" {
		if report.Session.Screenshot == "" {
			return fmt.Errorf("session %s has no screenshot", args[0])
		}
		if err := writeScreenshot(statusScreenshot, report.Session.Screenshot); err != nil {
			return err
		}
	}

	if statusJSON {
		return printJSON(report)
	}

	s := report.Session
	fmt.Printf("Session:   %s\n", s.SessionID)
	fmt.Printf("Status:    %s\n", s.Status)
	fmt.Printf("Reason:    %s\n", s.Reason)
	fmt.Printf("URL:       %s\n", s.CurrentURL)
	fmt.Printf("Signal:    %s\n", s.MatchedSignal)
	fmt.Printf("Age:       %ds\n", report.AgeSeconds)
	fmt.Printf("Remaining: %d actions\n", len(s.ActionsRemaining))
	if s.Excerpt != "" {
		fmt.Printf("\nPage excerpt:\n%s\n", s.Excerpt)
	}
	if report.Resolution != nil {
		fmt.Printf("\nResolved at %s", report.Resolution.ResolvedAt)
		if report.Resolution.CaptchaToken != "" {
			fmt.Printf(" with a CAPTCHA token")
		}
		fmt.Println()
	}
	return nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	resolution, err := buildResolution()
	if err != nil {
		return err
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if _, err := rt.manager.Resume(context.Background(), args[0], resolution); err != nil {
		return err
	}
	fmt.Printf("Session %s resolved. Resume the run with:\n  waypoint run --session %s\n", args[0], args[0])
	return nil
}

func buildResolution() (hitl.Resolution, error) {
	resolution := hitl.Resolution{CaptchaToken: resolveToken}

	if resolveCookies != "" {
		raw, err := os.ReadFile(resolveCookies)
		if err != nil {
			return resolution, fmt.Errorf("failed to read cookies file: %w", err)
		}
		var cookies []browser.Cookie
		if err := json.Unmarshal(raw, &cookies); err != nil {
			return resolution, fmt.Errorf("failed to parse cookies file: %w", err)
		}
		resolution.Cookies = cookies
	}

	if len(resolveData) > 0 {
		resolution.ManualData = make(map[string]any, len(resolveData))
		for _, kv := range resolveData {
			key, value, found := strings.Cut(kv, "=")
			if !found || key == "" {
				return resolution, fmt.Errorf("invalid --data %q, expected key=value", kv)
			}
			resolution.ManualData[key] = value
		}
	}

	if resolution.Empty() {
		return resolution, fmt.Errorf("a resolution requires at least one of --token, --cookies-file or --data")
	}
	return resolution, nil
}

func runCancel(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if !rt.manager.Cancel(context.Background(), args[0]) {
		return fmt.Errorf("session %s not found or already gone", args[0])
	}
	fmt.Printf("Session %s cancelled.\n", args[0])
	return nil
}

func printJSON(v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(payload))
	return nil
}
