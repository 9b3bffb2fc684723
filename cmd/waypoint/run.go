package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/waypoint/pkg/browser"
	"github.com/entrhq/waypoint/pkg/engine"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute an automation script, resuming a checkpointed session if given",
	Long: `Executes a declarative automation script against a fresh browser session.

When an intervention signal (CAPTCHA, login wall) interrupts the run, the
result carries a session ID. Resolve the session with "waypoint sessions
resolve" or the review console, then re-run with --session to continue from
the checkpoint.`,
	RunE: runAutomation,
}

var (
	runScript     string
	runSessionID  string
	runOutput     string
	runScreenshot string
)

func init() {
	runCmd.Flags().StringVar(&runScript, "script", "", "Path to YAML automation script")
	runCmd.Flags().StringVar(&runSessionID, "session", "", "Checkpointed session ID to resume")
	runCmd.Flags().StringVar(&runOutput, "output", "", "Write the JSON result to a file instead of stdout")
	runCmd.Flags().StringVar(&runScreenshot, "screenshot", "", "Write the result screenshot (PNG) to a file")
	rootCmd.AddCommand(runCmd)
}

// script is the on-disk YAML shape of an automation run.
type script struct {
	URL     string           `yaml:"url"`
	Actions []browser.Action `yaml:"actions"`
}

func loadScript(path string) (*script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script %s: %w", path, err)
	}
	if s.URL == "" {
		return nil, fmt.Errorf("script %s has no url", path)
	}
	return &s, nil
}

func runAutomation(cmd *cobra.Command, args []string) error {
	if runScript == "" && runSessionID == "" {
		return fmt.Errorf("either --script or --session is required")
	}

	req := engine.Request{SessionID: runSessionID}
	if runScript != "" {
		s, err := loadScript(runScript)
		if err != nil {
			return err
		}
		req.URL = s.URL
		req.Actions = s.Actions
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	allowlist, err := browser.NewAllowlist(rt.cfg.Browser.AllowedHosts)
	if err != nil {
		return err
	}

	driver := browser.NewPlaywrightDriver(rt.logger)
	if err := driver.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize browser driver: %w", err)
	}
	defer func() { _ = driver.Close() }()

	eng := engine.New(driver, rt.manager, engine.Options{
		Browser: rt.cfg.SessionOptions(),
		Executor: browser.ExecutorOptions{
			OnTimeout: browser.TimeoutPolicy(rt.cfg.Browser.OnTimeout),
			Allowlist: allowlist,
		},
		Signals:           rt.cfg.Detection.Signals,
		NavigationTimeout: rt.cfg.Browser.NavigationTimeout,
	}, rt.logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result := eng.Run(ctx, req)

	if err := writeResult(result); err != nil {
		return err
	}
	if runScreenshot != "" && result.Screenshot != "" {
		if err := writeScreenshot(runScreenshot, result.Screenshot); err != nil {
			return err
		}
	}

	switch {
	case result.HITLNeeded:
		fmt.Fprintf(os.Stderr, "\nHuman intervention needed: %s\n", result.Reason)
		fmt.Fprintf(os.Stderr, "Resolve it, then resume with:\n  waypoint run --session %s\n", result.SessionID)
	case result.Error != "":
		return fmt.Errorf("run failed: %s", result.Error)
	}
	return nil
}

func writeResult(result *engine.Result) error {
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	if runOutput == "" {
		fmt.Println(string(payload))
		return nil
	}
	if err := os.WriteFile(runOutput, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func writeScreenshot(path, b64 string) error {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("failed to decode screenshot: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}
