package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/livecalc/engine/internal/config"
	"github.com/livecalc/engine/internal/domain"
	"github.com/livecalc/engine/internal/logging"
	"github.com/livecalc/engine/internal/output"
	"github.com/livecalc/engine/internal/resolver"
	"github.com/livecalc/engine/internal/scenario"
	"github.com/livecalc/engine/internal/valuation"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	flagConfig     string
	flagFormat     string
	flagOut        string
	flagLocalRoot  string
	flagRegistry   string
	flagRequestsPS float64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a valuation batch from a YAML run configuration",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "path to the run configuration YAML file (required)")
	runCmd.Flags().StringVarP(&flagFormat, "format", "f", "json", "output format: json or csv")
	runCmd.Flags().StringVarP(&flagOut, "out", "o", "", "output file path (default: stdout)")
	runCmd.Flags().StringVar(&flagLocalRoot, "local-root", ".", "root directory for local:// assumption references")
	runCmd.Flags().StringVar(&flagRegistry, "registry-url", os.Getenv("LIVECALC_AM_URL"), "assumption-manager registry base URL")
	runCmd.Flags().Float64Var(&flagRequestsPS, "registry-rps", 0, "registry requests/second limit (0 = unlimited)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	runID := uuid.New().String()
	logger := logging.NewStdLogger(fmt.Sprintf("[livecalc %s] ", runID[:8]))

	if flagFormat != "json" && flagFormat != "csv" {
		return usageError(fmt.Errorf("unsupported --format %q (want json or csv)", flagFormat))
	}

	loader := config.NewLoader()
	runCfg, err := loader.LoadFromFile(flagConfig)
	if err != nil {
		return usageError(err)
	}

	policies, err := config.LoadPolicies(runCfg.PoliciesPath)
	if err != nil {
		return usageError(err)
	}

	res, err := buildResolver(cmd.Context())
	if err != nil {
		return usageError(err)
	}

	assumptions, err := config.ResolveAssumptions(cmd.Context(), res, runCfg.Assumptions, runCfg.AssumptionVer)
	if err != nil {
		return usageError(err)
	}

	scenarios, err := scenario.Generate(runCfg.ScenarioCount, runCfg.Scenarios, runCfg.Seed)
	if err != nil {
		return usageError(err)
	}

	logger.Infof("starting run %s: %s policies x %s scenarios (workers=%d)",
		runID, humanize.Comma(int64(len(policies))), humanize.Comma(int64(runCfg.ScenarioCount)), runCfg.Workers)

	driver := valuation.NewDriver(logger)
	start := time.Now()
	result := driver.Run(cmd.Context(), valuation.Inputs{
		Policies:    policies,
		Mortality:   assumptions.Mortality,
		Lapse:       assumptions.Lapse,
		Expenses:    assumptions.Expenses,
		Scenarios:   scenarios,
		Multipliers: runCfg.Multipliers,
		Trace:       runCfg.Trace,
		Workers:     runCfg.Workers,
		Logger:      logger,
	})
	elapsed := time.Since(start)

	printConsoleSummary(&result, elapsed, runID)

	formatter := output.GetFormatterByName(flagFormat)
	if formatter == nil {
		return usageError(output.ErrUnknownFormat(flagFormat))
	}
	data, err := formatter.Format(&result)
	if err != nil {
		return runFailure(err)
	}
	if err := writeOutput(data); err != nil {
		return runFailure(err)
	}

	if result.Cancelled || result.PartialResult {
		logger.Warnf("run %s completed with a partial result (%d scenarios failed)", runID, result.ScenariosFailed)
	}
	return nil
}

func buildResolver(ctx context.Context) (resolver.Resolver, error) {
	var base resolver.Resolver
	if flagRegistry != "" {
		token, err := resolveToken()
		if err != nil {
			return nil, err
		}
		base = resolver.NewRegistryResolver(resolver.RegistryOptions{
			BaseURL:           flagRegistry,
			Token:             token,
			RequestsPerSecond: flagRequestsPS,
		})
	} else {
		base = resolver.NewLocalResolver(flagLocalRoot)
	}
	return resolver.NewCachingResolver(base), nil
}

// resolveToken reads LIVECALC_AM_TOKEN from the environment, or prompts
// for it without echo when stdin is an interactive terminal and the
// environment variable is unset.
func resolveToken() (string, error) {
	if t := os.Getenv("LIVECALC_AM_TOKEN"); t != "" {
		return t, nil
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return "", nil
	}
	fmt.Fprint(os.Stderr, "Assumption-manager token: ")
	tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return string(tokenBytes), nil
}

func writeOutput(data []byte) error {
	if flagOut == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(flagOut, data, 0644)
}

func printConsoleSummary(result *domain.ValuationResult, elapsed time.Duration, runID string) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return
	}
	fmt.Fprintf(os.Stderr, "run %s finished in %ss\n", runID[:8], humanize.CommafWithDigits(elapsed.Seconds(), 2))
	fmt.Fprintf(os.Stderr, "  mean NPV: %s   CTE95: %s   scenarios failed: %d\n",
		humanize.CommafWithDigits(result.MeanNPV, 2),
		humanize.CommafWithDigits(result.CTE95, 2),
		result.ScenariosFailed)
}

func usageError(err error) error {
	return &cliError{code: exitUsageError, err: err}
}

func runFailure(err error) error {
	return &cliError{code: exitRunFailure, err: err}
}

// cliError carries the process exit code a failure should produce,
// per the exit-code contract in spec §6 (0 success, 1 usage/validation
// error, 2 unrecoverable run failure).
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
