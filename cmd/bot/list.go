package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"ClickerPilot/internal/calculator"
	"ClickerPilot/internal/collector"
	"ClickerPilot/internal/config"
	"ClickerPilot/internal/notifier"
	"ClickerPilot/internal/state"
)

func newListCmd() *cobra.Command {
	var top int
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ranked eligible upgrades with projected purchase times",
		Long: `Reads the saved state file and prints the payback-ranked upgrades the bot
would consider. Nothing is bought and the state file is not modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("top") {
				top = cfg.Strategy.TopN
			}
			store, err := state.Open(cfg.State.File)
			if err != nil {
				return err
			}
			if !store.Has(state.KeyClickerUser) || !store.Has(state.KeyUpgradesForBuy) {
				return fmt.Errorf("no saved state at %s; run the bot first", cfg.State.File)
			}
			return printRanking(cfg, store, top, all)
		},
	}
	cmd.Flags().IntVarP(&top, "top", "n", 20, "Number of upgrades to show")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Show every eligible upgrade")
	return cmd
}

func printRanking(cfg *config.Config, store *state.Store, top int, all bool) error {
	// No client: Snapshot only reads the store.
	st, cat, err := collector.NewCollector(nil, store).Snapshot()
	if err != nil {
		return err
	}

	now := time.Now()
	sel := newSelector(cfg)
	rows := sel.Rank(cat, st, now)
	decision := sel.ChooseNext(cat, st, now)

	color.New(color.FgCyan, color.Bold).Printf("%s\n", notifier.FormatState(st))
	fmt.Printf("Last sync: %s, %d of %d upgrades eligible\n\n",
		humanize.Time(st.LastSync()), len(rows), cat.Len())

	if !all && top > 0 && len(rows) > top {
		rows = rows[:top]
	}

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Section", "Upgrade", "Price", "+/h", "Payback", "Cooldown", "Buy in"}),
	)
	for i, c := range rows {
		u := c.Upgrade
		name := u.Name
		if !u.Available {
			name = "* " + name
		}
		if c.SecondOrder {
			name += " (2nd)"
		}
		if decision.Found() && decision.Upgrade.ID == u.ID {
			name = "→ " + name
		}
		cooldown := ""
		if u.Cooldown > 0 {
			cooldown = notifier.FormatDuration(u.Cooldown)
		}
		buyIn := "-"
		if c.Feasible {
			buyIn = notifier.FormatDuration(calculator.Until(now, c.At))
		}
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			u.Section,
			name,
			humanize.Commaf(u.Price),
			notifier.FormatCoins(u.ProfitPerHourDelta),
			notifier.FormatPayback(u.PaybackHours),
			cooldown,
			buyIn,
		})
	}
	table.Render()

	if decision.Found() {
		color.New(color.FgGreen, color.Bold).Printf("\n✓ Next: %s / %s in %s\n",
			decision.Upgrade.Section, decision.Upgrade.Name, notifier.FormatDuration(calculator.Until(now, decision.At)))
	} else {
		color.Yellow("\nNothing to buy, next sync is a keep-alive.")
	}
	return nil
}
