package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/contactkeval/iv-calculator/internal/batch"
	"github.com/contactkeval/iv-calculator/internal/config"
	"github.com/contactkeval/iv-calculator/internal/data"
	"github.com/contactkeval/iv-calculator/internal/logger"
	"github.com/contactkeval/iv-calculator/internal/pricing"
	"github.com/contactkeval/iv-calculator/internal/report"
)

// app holds the flag values and the configuration shared by all commands.
type app struct {
	configPath string
	verbosity  int
	method     string
	workers    int
	cfg        *config.Config

	call, put  bool
	price      float64
	volatility float64
	asset      float64
	strike     float64
	expiry     float64
	rate       float64
	batchFile  string
	output     string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "iv-calculator",
		Short: "Black-Scholes option pricer and implied volatility solver",
		Long: `iv-calculator prices European options with the Black-Scholes model and
recovers implied volatility from market prices, for one option or a batch file.`,
		Example: `  iv-calculator --call --asset 100 --strike 100 --time 1 --rate 0.05 --volatility 0.2
  iv-calculator --put --asset 100 --strike 100 --time 1 --rate 0.05 --price 5.57
  iv-calculator --batch options.csv --output results.json --method newton`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { _ = logger.Sync() },
		RunE:              a.run,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")
	pf.CountVarP(&a.verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")
	pf.StringVar(&a.method, "method", "", "implied volatility method: bisection or newton")
	pf.IntVar(&a.workers, "workers", 0, "parallel workers for batch evaluation")

	f := root.Flags()
	f.BoolVar(&a.call, "call", false, "calculate for a call option (default)")
	f.BoolVar(&a.put, "put", false, "calculate for a put option")
	f.Float64Var(&a.price, "price", 0, "option price, solves for implied volatility")
	f.Float64Var(&a.volatility, "volatility", 0, "volatility, calculates the option price")
	f.Float64Var(&a.asset, "asset", 0, "current price of the underlying asset")
	f.Float64Var(&a.strike, "strike", 0, "strike price of the option")
	f.Float64Var(&a.expiry, "time", 0, "time to expiry in years")
	f.Float64Var(&a.rate, "rate", 0, "risk-free interest rate as a decimal")
	f.StringVar(&a.batchFile, "batch", "", "process records from a .csv or .json file")
	f.StringVar(&a.output, "output", "", "write results to a .csv or .json file")
	root.MarkFlagsMutuallyExclusive("call", "put")

	root.AddCommand(newServeCmd(a), newGenerateCmd())
	return root
}

// setup loads configuration and initialises logging before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("method") {
		if _, err := pricing.ParseMethod(a.method); err != nil {
			return err
		}
		cfg.Solver.Method = a.method
	}
	if cmd.Flags().Changed("workers") {
		cfg.Batch.Workers = a.workers
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Log.Verbosity = a.verbosity
	}
	a.cfg = cfg

	return logger.Init(logger.Options{
		Verbosity:  cfg.Log.Verbosity,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
}

func (a *app) solverMethod() pricing.Method {
	m, err := pricing.ParseMethod(a.cfg.Solver.Method)
	if err != nil {
		// config validation only admits known names
		return pricing.Bisection
	}
	return m
}

func (a *app) run(cmd *cobra.Command, _ []string) error {
	if a.batchFile != "" {
		return a.runBatch(cmd)
	}
	if cmd.Flags().NFlag() == 0 {
		return cmd.Help()
	}
	return a.runSingle(cmd)
}

func (a *app) runSingle(cmd *cobra.Command) error {
	if !(a.asset > 0) || !(a.strike > 0) || !(a.expiry > 0) {
		return errors.New("asset price, strike price, and time to expiry must be positive")
	}

	hasPrice := cmd.Flags().Changed("price")
	hasVol := cmd.Flags().Changed("volatility")
	if !hasPrice && !hasVol {
		return errors.New("either option price or volatility must be provided")
	}

	rec := data.OptionRecord{
		Type:   data.TypeCall,
		Asset:  a.asset,
		Strike: a.strike,
		Time:   a.expiry,
		Rate:   a.rate,
	}
	if a.put {
		rec.Type = data.TypePut
	}
	if hasPrice {
		rec.Price = data.Float(a.price)
	}
	if hasVol {
		rec.Volatility = data.Float(a.volatility)
	}
	if hasPrice && hasVol {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: both option price and volatility provided, calculating price from volatility")
	}

	proc := batch.NewProcessor(a.solverMethod(), 1, nil)
	sol, err := proc.Evaluate(&rec, proc.Method())
	if err != nil {
		return err
	}
	if rec.Computed == data.FieldVolatility {
		logger.Debugf("solved with %s in %d iterations", sol.Method, sol.Iterations)
	}

	out := cmd.OutOrStdout()
	if err := report.WriteSingle(out, &rec); err != nil {
		return err
	}
	return a.writeOutput(cmd, []data.OptionRecord{rec})
}

func (a *app) runBatch(cmd *cobra.Command) error {
	records, err := data.Read(a.batchFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	proc := batch.NewProcessor(a.solverMethod(), a.cfg.Batch.Workers, nil)
	summary, err := proc.Process(ctx, records)
	if err != nil {
		return err
	}
	logger.Infof("batch %s finished in %v", a.batchFile, time.Since(start))

	out := cmd.OutOrStdout()
	for i := range records {
		if err := report.WriteBatchLine(out, &records[i]); err != nil {
			return err
		}
	}
	if err := report.WriteSummary(out, summary); err != nil {
		return err
	}
	return a.writeOutput(cmd, records)
}

func (a *app) writeOutput(cmd *cobra.Command, records []data.OptionRecord) error {
	if a.output == "" {
		return nil
	}
	if err := data.Write(a.output, records); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", a.output)
	return nil
}

// execute runs the root command with a background context.
func execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}
