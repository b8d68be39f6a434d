package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/mtlprog/folio/internal/allocation"
	"github.com/mtlprog/folio/internal/config"
	"github.com/mtlprog/folio/internal/dca"
	"github.com/mtlprog/folio/internal/domain"
	"github.com/mtlprog/folio/internal/export"
	"github.com/mtlprog/folio/internal/fire"
	"github.com/mtlprog/folio/internal/networth"
	"github.com/mtlprog/folio/internal/persona"
	"github.com/mtlprog/folio/internal/quote"
	"github.com/mtlprog/folio/internal/report"
	"github.com/mtlprog/folio/internal/store"
	"github.com/mtlprog/folio/internal/worker"
)

// app bundles everything the commands share.
type app struct {
	cfg      config.Config
	store    *store.Store
	renderer *report.Renderer
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg := config.Load()
	a := &app{
		cfg:      cfg,
		store:    store.New(cfg.StatePath, cfg.Passphrase),
		renderer: report.NewRenderer(os.Stdout, cfg.BaseCurrency),
	}

	cliApp := &cli.App{
		Name:  "folio",
		Usage: "asset allocation, rebalancing and FIRE planning from the terminal",
		Commands: []*cli.Command{
			showCommand(a),
			assetCommand(a),
			classCommand(a),
			fireCommand(a),
			networthCommand(a),
			dcaCommand(a),
			personaCommand(a),
			exportCommand(a),
			importCommand(a),
			quoteCommand(a),
			watchCommand(a),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadState reads the sealed state, turning an expired file into an
// actionable message.
func (a *app) loadState() (store.State, error) {
	state, err := a.store.Load()
	if errors.Is(err, store.ErrExpired) {
		return store.State{}, fmt.Errorf("state file %s has expired; re-import your data from a CSV export", a.cfg.StatePath)
	}
	if err != nil {
		return store.State{}, err
	}
	return state, nil
}

func (a *app) saveState(state store.State) error {
	if err := os.MkdirAll(filepath.Dir(a.cfg.StatePath), 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return a.store.Save(state)
}

func decimalFlag(c *cli.Context, name string) (decimal.Decimal, error) {
	raw := c.String(name)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s value %q", name, raw)
	}
	return d, nil
}

func parseClass(raw string) (domain.AssetClass, error) {
	class := domain.AssetClass(strings.ToUpper(raw))
	if !class.Valid() {
		return "", fmt.Errorf("unknown asset class %q (want one of %v)", raw, domain.AllClasses)
	}
	return class, nil
}

func showCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "print the current allocation, class summaries and rebalancing deltas",
		Action: func(c *cli.Context) error {
			state, err := a.loadState()
			if err != nil {
				return err
			}
			alloc := allocation.ComputeAllocation(state.Assets, state.ClassTargets)
			a.renderer.Allocation(alloc)
			return nil
		},
	}
}

func assetCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "asset",
		Usage: "manage individual holdings",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "add a holding; PERCENTAGE siblings shrink to make room",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "class", Required: true, Usage: "STOCKS, BONDS, CASH, CRYPTO or REAL_ESTATE"},
					&cli.StringFlag{Name: "value", Required: true, Usage: "current value"},
					&cli.StringFlag{Name: "mode", Value: string(domain.ModePercentage), Usage: "PERCENTAGE, SET or OFF"},
					&cli.StringFlag{Name: "percent", Usage: "target percent inside the class (PERCENTAGE mode)"},
					&cli.StringFlag{Name: "target-value", Usage: "absolute target (SET mode)"},
					&cli.StringFlag{Name: "ticker"},
					&cli.StringFlag{Name: "isin"},
					&cli.StringFlag{Name: "institution"},
				},
				Action: func(c *cli.Context) error { return runAssetAdd(a, c) },
			},
			{
				Name:  "remove",
				Usage: "remove a holding; its percent is redistributed to PERCENTAGE siblings",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
				},
				Action: func(c *cli.Context) error { return runAssetRemove(a, c) },
			},
			{
				Name:  "set-target",
				Usage: "set a holding's target percent; siblings rebalance proportionally",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "percent", Required: true},
				},
				Action: func(c *cli.Context) error { return runAssetSetTarget(a, c) },
			},
			{
				Name:  "list",
				Usage: "list holdings with their IDs",
				Action: func(c *cli.Context) error {
					state, err := a.loadState()
					if err != nil {
						return err
					}
					for _, asset := range state.Assets {
						fmt.Printf("%s  %-12s %-10s %s\n", asset.ID, asset.AssetClass, asset.TargetMode, asset.Name)
					}
					return nil
				},
			},
		},
	}
}

func runAssetAdd(a *app, c *cli.Context) error {
	state, err := a.loadState()
	if err != nil {
		return err
	}

	class, err := parseClass(c.String("class"))
	if err != nil {
		return err
	}
	mode := domain.TargetMode(strings.ToUpper(c.String("mode")))
	switch mode {
	case domain.ModePercentage, domain.ModeSet, domain.ModeOff:
	default:
		return fmt.Errorf("unknown target mode %q", c.String("mode"))
	}

	value, err := decimalFlag(c, "value")
	if err != nil {
		return err
	}
	percent, err := decimalFlag(c, "percent")
	if err != nil {
		return err
	}
	targetValue, err := decimalFlag(c, "target-value")
	if err != nil {
		return err
	}

	asset := domain.Asset{
		ID:            uuid.NewString(),
		Name:          c.String("name"),
		AssetClass:    class,
		CurrentValue:  value,
		TargetMode:    mode,
		TargetPercent: percent,
		TargetValue:   targetValue,
		Ticker:        c.String("ticker"),
		ISIN:          c.String("isin"),
		Institution:   c.String("institution"),
	}

	state.Assets = allocation.AddAsset(state.Assets, asset)
	if err := a.saveState(state); err != nil {
		return err
	}
	slog.Info("asset added", "id", asset.ID, "name", asset.Name, "class", asset.AssetClass)
	a.renderer.Allocation(allocation.ComputeAllocation(state.Assets, state.ClassTargets))
	return nil
}

func runAssetRemove(a *app, c *cli.Context) error {
	state, err := a.loadState()
	if err != nil {
		return err
	}
	id := c.String("id")
	before := len(state.Assets)
	state.Assets = allocation.RemoveAsset(state.Assets, id)
	if len(state.Assets) == before {
		return fmt.Errorf("no asset with id %s", id)
	}
	if err := a.saveState(state); err != nil {
		return err
	}
	slog.Info("asset removed", "id", id)
	a.renderer.Allocation(allocation.ComputeAllocation(state.Assets, state.ClassTargets))
	return nil
}

func runAssetSetTarget(a *app, c *cli.Context) error {
	state, err := a.loadState()
	if err != nil {
		return err
	}
	percent, err := decimalFlag(c, "percent")
	if err != nil {
		return err
	}
	state.Assets = allocation.EditAssetTarget(state.Assets, c.String("id"), percent)
	if err := a.saveState(state); err != nil {
		return err
	}
	a.renderer.Allocation(allocation.ComputeAllocation(state.Assets, state.ClassTargets))
	return nil
}

func classCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "class",
		Usage: "manage class-level targets",
		Subcommands: []*cli.Command{
			{
				Name:  "set-target",
				Usage: "set a class target; PERCENTAGE classes rebalance proportionally",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "class", Required: true},
					&cli.StringFlag{Name: "mode", Value: string(domain.ModePercentage)},
					&cli.StringFlag{Name: "percent"},
				},
				Action: func(c *cli.Context) error { return runClassSetTarget(a, c) },
			},
		},
	}
}

func runClassSetTarget(a *app, c *cli.Context) error {
	state, err := a.loadState()
	if err != nil {
		return err
	}
	class, err := parseClass(c.String("class"))
	if err != nil {
		return err
	}
	mode := domain.TargetMode(strings.ToUpper(c.String("mode")))

	switch mode {
	case domain.ModePercentage:
		percent, err := decimalFlag(c, "percent")
		if err != nil {
			return err
		}
		state.ClassTargets = allocation.EditClassTarget(state.ClassTargets, class, percent)
	case domain.ModeSet, domain.ModeOff:
		// SET and OFF classes sit outside the redistribution scope; assign
		// directly. A SET class derives its value from its SET assets.
		state.ClassTargets[class] = domain.AssetClassTarget{TargetMode: mode}
	default:
		return fmt.Errorf("unknown target mode %q", c.String("mode"))
	}

	if err := a.saveState(state); err != nil {
		return err
	}
	a.renderer.Allocation(allocation.ComputeAllocation(state.Assets, state.ClassTargets))
	return nil
}

func fireCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "fire",
		Usage: "project years to financial independence",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "value", Usage: "starting portfolio value (defaults to current total)"},
			&cli.StringFlag{Name: "contribution", Required: true, Usage: "annual contribution"},
			&cli.StringFlag{Name: "return", Required: true, Usage: "expected annual return percent"},
			&cli.StringFlag{Name: "inflation", Value: "2", Usage: "annual inflation percent"},
			&cli.StringFlag{Name: "expenses", Required: true, Usage: "annual expenses"},
			&cli.StringFlag{Name: "rate", Value: "4", Usage: "safe withdrawal rate percent"},
		},
		Action: func(c *cli.Context) error {
			in := fire.Input{}
			var err error
			if in.CurrentValue, err = decimalFlag(c, "value"); err != nil {
				return err
			}
			if c.String("value") == "" {
				state, err := a.loadState()
				if err != nil {
					return err
				}
				alloc := allocation.ComputeAllocation(state.Assets, state.ClassTargets)
				in.CurrentValue = alloc.TotalValue
			}
			if in.AnnualContribution, err = decimalFlag(c, "contribution"); err != nil {
				return err
			}
			if in.AnnualReturn, err = decimalFlag(c, "return"); err != nil {
				return err
			}
			if in.Inflation, err = decimalFlag(c, "inflation"); err != nil {
				return err
			}
			if in.AnnualExpenses, err = decimalFlag(c, "expenses"); err != nil {
				return err
			}
			if in.WithdrawalRate, err = decimalFlag(c, "rate"); err != nil {
				return err
			}
			a.renderer.Projection(fire.Project(in))
			return nil
		},
	}
}

func networthCommand(a *app) *cli.Command {
	service := func() *networth.Service {
		return networth.NewService(store.NewNetWorthRepository(a.store))
	}
	return &cli.Command{
		Name:  "networth",
		Usage: "track net worth over time",
		Subcommands: []*cli.Command{
			{
				Name:  "record",
				Usage: "snapshot today's totals into the history",
				Action: func(c *cli.Context) error {
					state, err := a.loadState()
					if err != nil {
						return err
					}
					alloc := allocation.ComputeAllocation(state.Assets, state.ClassTargets)
					entry, err := service().Record(time.Now(), alloc)
					if err != nil {
						return err
					}
					slog.Info("net worth recorded", "date", entry.Date.Format("2006-01-02"), "total", entry.TotalValue)
					return nil
				},
			},
			{
				Name:  "history",
				Usage: "print the recorded history, oldest first",
				Action: func(c *cli.Context) error {
					entries, err := service().History()
					if err != nil {
						return err
					}
					a.renderer.History(entries)
					return nil
				},
			},
			{
				Name:  "change",
				Usage: "print the change between the two most recent entries",
				Action: func(c *cli.Context) error {
					delta, percent, ok, err := service().Change()
					if err != nil {
						return err
					}
					a.renderer.Change(delta, percent, ok)
					return nil
				},
			},
		},
	}
}

func dcaCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "dca",
		Usage: "plan recurring investments",
		Subcommands: []*cli.Command{
			{
				Name:  "split",
				Usage: "split an amount across classes by their PERCENTAGE targets",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "amount", Required: true},
				},
				Action: func(c *cli.Context) error {
					state, err := a.loadState()
					if err != nil {
						return err
					}
					amount, err := decimalFlag(c, "amount")
					if err != nil {
						return err
					}
					split := dca.SplitByClassTargets(amount, state.ClassTargets)
					if len(split) == 0 {
						fmt.Println("no PERCENTAGE class targets configured")
						return nil
					}
					f := report.NewFormatter(a.cfg.BaseCurrency)
					for _, class := range domain.AllClasses {
						if part, ok := split[class]; ok {
							fmt.Printf("%-12s %s\n", class, f.Format(part))
						}
					}
					return nil
				},
			},
			{
				Name:  "buy",
				Usage: "compute shares for one installment, fetching the price if not given",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "symbol", Required: true},
					&cli.StringFlag{Name: "amount", Required: true},
					&cli.StringFlag{Name: "price", Usage: "manual price; skips the quote lookup"},
				},
				Action: func(c *cli.Context) error {
					amount, err := decimalFlag(c, "amount")
					if err != nil {
						return err
					}
					price, err := decimalFlag(c, "price")
					if err != nil {
						return err
					}
					client := quote.NewClient(a.cfg.QuoteURL, strings.ToLower(a.cfg.BaseCurrency), a.cfg.QuoteRetryBaseDelay, a.cfg.QuoteRetryMax)
					planner := dca.NewPlanner(client)
					purchase, err := planner.Installment(context.Background(), c.String("symbol"), amount, price)
					if err != nil {
						return err
					}
					f := report.NewFormatter(a.cfg.BaseCurrency)
					fmt.Printf("%s at %s buys %s shares\n",
						f.Format(purchase.Amount), f.Format(purchase.Price), purchase.Shares.Round(6))
					return nil
				},
			},
		},
	}
}

func personaCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "persona",
		Usage: "answer the risk questionnaire and get suggested class targets",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "apply", Usage: "apply the suggested class targets"},
		},
		Action: func(c *cli.Context) error {
			answers, err := askQuestions(os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
			profile, err := persona.Evaluate(answers)
			if err != nil {
				return err
			}

			fmt.Printf("\nProfile: %s (score %d)\n", profile.Kind, profile.Score)
			fmt.Println("Suggested class targets:")
			for _, class := range domain.AllClasses {
				tgt, ok := profile.SuggestedTargets[class]
				if !ok {
					continue
				}
				if tgt.TargetMode == domain.ModePercentage {
					fmt.Printf("  %-12s %s%%\n", class, tgt.TargetPercent)
				} else {
					fmt.Printf("  %-12s %s\n", class, tgt.TargetMode)
				}
			}

			state, err := a.loadState()
			if err != nil {
				return err
			}
			state.PersonaAnswers = answers
			if c.Bool("apply") {
				state.ClassTargets = profile.SuggestedTargets
				slog.Info("class targets replaced", "persona", profile.Kind)
			}
			return a.saveState(state)
		},
	}
}

// askQuestions walks the questionnaire on the terminal and returns the
// selected option index per question.
func askQuestions(in *os.File, out *os.File) (map[string]int, error) {
	reader := bufio.NewReader(in)
	answers := map[string]int{}

	for _, q := range persona.Questions() {
		fmt.Fprintf(out, "\n%s\n", q.Text)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt.Text)
		}
		for {
			fmt.Fprint(out, "> ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return nil, fmt.Errorf("reading answer: %w", err)
			}
			var choice int
			if _, err := fmt.Sscanf(strings.TrimSpace(line), "%d", &choice); err != nil || choice < 1 || choice > len(q.Options) {
				fmt.Fprintf(out, "enter a number between 1 and %d\n", len(q.Options))
				continue
			}
			answers[q.ID] = choice - 1
			break
		}
	}
	return answers, nil
}

func exportCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "export the portfolio",
		Subcommands: []*cli.Command{
			{
				Name:  "csv",
				Usage: "write assets and class targets as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Required: true},
				},
				Action: func(c *cli.Context) error {
					state, err := a.loadState()
					if err != nil {
						return err
					}
					f, err := os.Create(c.String("out"))
					if err != nil {
						return fmt.Errorf("creating export file: %w", err)
					}
					if err := export.WriteCSV(f, state.Assets, state.ClassTargets); err != nil {
						f.Close()
						return err
					}
					return f.Close()
				},
			},
			{
				Name:  "xlsx",
				Usage: "write the full allocation and net worth history as a workbook",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Required: true},
				},
				Action: func(c *cli.Context) error {
					state, err := a.loadState()
					if err != nil {
						return err
					}
					alloc := allocation.ComputeAllocation(state.Assets, state.ClassTargets)
					return export.NewXLSXWriter(c.String("out")).Write(alloc, state.NetWorth)
				},
			},
		},
	}
}

func importCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "import a portfolio",
		Subcommands: []*cli.Command{
			{
				Name:  "csv",
				Usage: "replace assets and class targets from a CSV export",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Required: true},
				},
				Action: func(c *cli.Context) error {
					f, err := os.Open(c.String("in"))
					if err != nil {
						return fmt.Errorf("opening import file: %w", err)
					}
					defer f.Close()

					assets, targets, err := export.ReadCSV(f)
					if err != nil {
						return err
					}

					state, err := a.loadState()
					if err != nil {
						return err
					}
					state.Assets = assets
					state.ClassTargets = targets
					if err := a.saveState(state); err != nil {
						return err
					}
					slog.Info("portfolio imported", "assets", len(assets), "classTargets", len(targets))
					return nil
				},
			},
		},
	}
}

func watchCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "periodically refresh crypto prices and record net worth",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "interval", Value: 24 * time.Hour},
			&cli.BoolFlag{Name: "refresh-quotes", Value: true, Usage: "fetch crypto prices before each snapshot"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rec := &snapshotRecorder{app: a, refreshQuotes: c.Bool("refresh-quotes")}
			worker.NewSnapshotWorker(rec, c.Duration("interval")).Run(ctx)
			return nil
		},
	}
}

// snapshotRecorder adapts the state store and net-worth service to the
// worker's recorder interface.
type snapshotRecorder struct {
	app           *app
	refreshQuotes bool
}

func (r *snapshotRecorder) Snapshot(ctx context.Context) error {
	a := r.app
	state, err := a.loadState()
	if err != nil {
		return err
	}

	if r.refreshQuotes {
		if err := refreshCryptoValues(ctx, a, state.Assets); err != nil {
			slog.Warn("quote refresh failed, recording with stored values", "error", err)
		} else if err := a.saveState(state); err != nil {
			return err
		}
	}

	alloc := allocation.ComputeAllocation(state.Assets, state.ClassTargets)
	svc := networth.NewService(store.NewNetWorthRepository(a.store))
	_, err = svc.Record(time.Now(), alloc)
	return err
}

// refreshCryptoValues reprices CRYPTO holdings that carry a ticker and a
// share count from current market quotes.
func refreshCryptoValues(ctx context.Context, a *app, assets []domain.Asset) error {
	var symbols []string
	for _, asset := range assets {
		if asset.AssetClass == domain.ClassCrypto && asset.Ticker != "" && asset.Shares.IsPositive() {
			symbols = append(symbols, asset.Ticker)
		}
	}
	if len(symbols) == 0 {
		return nil
	}

	client := quote.NewClient(a.cfg.QuoteURL, strings.ToLower(a.cfg.BaseCurrency), a.cfg.QuoteRetryBaseDelay, a.cfg.QuoteRetryMax)
	prices, err := client.FetchPrices(ctx, symbols)
	if err != nil {
		return err
	}

	for i := range assets {
		asset := &assets[i]
		if asset.AssetClass != domain.ClassCrypto {
			continue
		}
		price, ok := prices[asset.Ticker]
		if !ok {
			continue
		}
		asset.PricePerShare = price
		asset.CurrentValue = asset.Shares.Mul(price)
	}
	return nil
}

func quoteCommand(a *app) *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "fetch current prices for symbols",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "symbols", Required: true, Usage: "comma-separated, e.g. BTC,ETH"},
		},
		Action: func(c *cli.Context) error {
			var symbols []string
			for _, s := range strings.Split(c.String("symbols"), ",") {
				if s = strings.TrimSpace(s); s != "" {
					symbols = append(symbols, s)
				}
			}
			client := quote.NewClient(a.cfg.QuoteURL, strings.ToLower(a.cfg.BaseCurrency), a.cfg.QuoteRetryBaseDelay, a.cfg.QuoteRetryMax)
			prices, err := client.FetchPrices(context.Background(), symbols)
			if err != nil {
				return err
			}
			f := report.NewFormatter(a.cfg.BaseCurrency)
			for _, s := range symbols {
				price, ok := prices[s]
				if !ok {
					fmt.Printf("%-8s no quote\n", s)
					continue
				}
				fmt.Printf("%-8s %s\n", s, f.Format(price))
			}
			return nil
		},
	}
}
