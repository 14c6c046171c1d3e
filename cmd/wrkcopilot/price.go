package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/adapter/fsm"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/app"
	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

type priceOptions struct {
	complexity string
	actions    map[string]int
	volume     int
	currency   string
	discounts  []string
	json       bool
}

func newPriceCmd(global *globalOptions) *cobra.Command {
	opts := &priceOptions{}
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price an estimate offline without storing a quote",
		Example: `  wrkcopilot price --complexity medium --action wrkaction-1=10 --volume 100 \
    --discount promo:0.1:setup_fee`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}

			discounts, err := parseDiscounts(opts.discounts)
			if err != nil {
				return err
			}

			svc := app.NewQuoteService(nil, nil, nil, newCatalog(cfg, zap.NewNop()), fsm.New(), nil)
			result, err := svc.Preview(cmd.Context(), app.PriceRequest{
				Complexity:       opts.complexity,
				EstimatedActions: actionEstimates(opts.actions),
				EstimatedVolume:  opts.volume,
				Currency:         opts.currency,
			}, discounts)
			if err != nil {
				return err
			}

			return printPricing(cmd.OutOrStdout(), result, opts.json)
		},
	}

	cmd.Flags().StringVar(&opts.complexity, "complexity", "", "basic, medium, complex or enterprise (required)")
	cmd.Flags().StringToIntVar(&opts.actions, "action", nil, "Action type and count per outcome, e.g. wrkaction-1=10 (repeatable)")
	cmd.Flags().IntVar(&opts.volume, "volume", 0, "Estimated outcomes per month")
	cmd.Flags().StringVar(&opts.currency, "currency", "", "ISO 4217 currency code (default USD)")
	cmd.Flags().StringArrayVar(&opts.discounts, "discount", nil, "Discount as source:percent:scope, scope setup_fee or unit_price (repeatable)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the result as JSON")

	if err := cmd.MarkFlagRequired("complexity"); err != nil {
		panic(fmt.Sprintf("failed to mark complexity flag as required: %v", err))
	}
	return cmd
}

// actionEstimates orders the flag map by action type so warnings are stable.
func actionEstimates(counts map[string]int) []app.ActionEstimate {
	actions := make([]app.ActionEstimate, 0, len(counts))
	for actionType, count := range counts {
		actions = append(actions, app.ActionEstimate{ActionType: actionType, Count: count})
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i].ActionType < actions[j].ActionType })
	return actions
}

// parseDiscounts reads "source:percent:scope" triples.
func parseDiscounts(raw []string) ([]domain.Discount, error) {
	discounts := make([]domain.Discount, 0, len(raw))
	for _, r := range raw {
		parts := strings.Split(r, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("discount %q: want source:percent:scope", r)
		}
		percent, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("discount %q: bad percent: %w", r, err)
		}
		discounts = append(discounts, domain.Discount{
			Source:    parts[0],
			Percent:   percent,
			AppliesTo: domain.DiscountScope(parts[2]),
		})
	}
	return discounts, nil
}

func printPricing(w io.Writer, r domain.PricingResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(w, "Setup fee:            %.2f %s (base %.2f)\n", r.SetupFee, r.Currency, r.BaseSetupFee)
	fmt.Fprintf(w, "Unit price:           %.4f %s per outcome\n", r.UnitPrice, r.Currency)
	fmt.Fprintf(w, "Effective unit price: %.4f %s per outcome\n", r.EffectiveUnitPrice, r.Currency)
	if r.EstimatedVolume > 0 {
		fmt.Fprintf(w, "Monthly spend:        %.2f %s at %d outcomes\n", r.EstimatedMonthlySpend, r.Currency, r.EstimatedVolume)
	}
	for _, d := range r.DiscountsApplied {
		fmt.Fprintf(w, "Discount %s: %.0f%% off %s (-%v)\n", d.Source, d.Percent*100, d.AppliesTo, d.Amount)
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	return nil
}
