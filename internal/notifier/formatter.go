package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"ClickerPilot/internal/model"
	"ClickerPilot/internal/strategy"
)

// FormatCoins renders an amount with k/M/B/T suffixes and two decimals.
func FormatCoins(n float64) string {
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return fmt.Sprintf("%v", n)
	}
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	if n < 1000 {
		return fmt.Sprintf("%s%.2f", sign, n)
	}
	for _, suffix := range []string{"k", "M", "B"} {
		n /= 1000
		if n < 1000 {
			return fmt.Sprintf("%s%.2f%s", sign, n, suffix)
		}
	}
	return fmt.Sprintf("%s%.2fT", sign, n/1000)
}

// FormatDuration renders d as "[Nd ]H:MM:SS", dropping leading zero units.
// Negative durations render as zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	t := int64(d.Seconds() + 0.5)

	f := fmt.Sprintf("%02d", t%60)
	t /= 60
	if t == 0 {
		return f
	}
	f = fmt.Sprintf("%02d:", t%60) + f
	t /= 60
	if t == 0 {
		return f
	}
	f = fmt.Sprintf("%d:", t%24) + f
	t /= 24
	if t == 0 {
		return f
	}
	return fmt.Sprintf("%dd ", t) + f
}

// FormatPayback renders a payback period in hours.
func FormatPayback(hours float64) string {
	if math.IsInf(hours, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2fh", hours)
}

// FormatState renders the balance line logged after every sync or purchase.
func FormatState(st *model.EconomicState) string {
	return fmt.Sprintf("Balance: %s, +%s/h", FormatCoins(st.BalanceCoins), FormatCoins(st.EarnPassivePerHour))
}

// FormatPlan renders the plan announcement.
func FormatPlan(p *model.Plan) string {
	switch p.Action {
	case model.ActionBuy, model.ActionKeepAlive:
		if p.Upgrade == nil {
			return fmt.Sprintf("Keep alive at %s", p.WakeAt.Format("15:04:05"))
		}
		verb := "Prepare"
		if p.Action == model.ActionKeepAlive {
			verb = "Wait"
		}
		u := p.Upgrade
		return fmt.Sprintf("%s to buy %s / %s for %s, +%s/h, pp = %s",
			verb, u.Section, u.Name, FormatCoins(u.Price), FormatCoins(u.ProfitPerHourDelta), FormatPayback(u.PaybackHours))
	default:
		return fmt.Sprintf("Nothing to buy, idle until %s", p.WakeAt.Format("15:04:05"))
	}
}

// FormatPurchaseReport formats a purchase into a Telegram message.
func FormatPurchaseReport(u *model.Upgrade, st *model.EconomicState) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🛒 <b>Bought %s</b> (%s)\n\n", html.EscapeString(u.Name), html.EscapeString(u.Section)))
	b.WriteString(fmt.Sprintf("Price: %s\n", humanize.Commaf(math.Round(u.Price))))
	b.WriteString(fmt.Sprintf("Income: +%s/h (pp %s)\n", FormatCoins(u.ProfitPerHourDelta), FormatPayback(u.PaybackHours)))
	b.WriteString(fmt.Sprintf("%s\n", FormatState(st)))
	return b.String()
}

// FormatStatus formats the current state and pending plan for display.
func FormatStatus(st *model.EconomicState, p *model.Plan, now time.Time) string {
	var b strings.Builder
	b.WriteString("📦 <b>Status</b>\n\n")
	b.WriteString(fmt.Sprintf("%s\n", FormatState(st)))
	b.WriteString(fmt.Sprintf("Last sync: %s\n", humanize.RelTime(st.LastSync(), now, "ago", "from now")))
	b.WriteString(fmt.Sprintf("Projected balance: %s\n", FormatCoins(st.BalanceAt(now))))
	if p != nil {
		b.WriteString(fmt.Sprintf("Next: %s\n", html.EscapeString(FormatPlan(p))))
		b.WriteString(fmt.Sprintf("Wake: %s (in %s)\n", p.WakeAt.Format("2006-01-02 15:04:05"), FormatDuration(p.WakeAt.Sub(now))))
	}
	return b.String()
}

// FormatRanking formats the top n ranked candidates. Unavailable upgrades are
// marked with "*", cooldowns are appended.
func FormatRanking(rows []strategy.Candidate, n int, now time.Time) string {
	var b strings.Builder
	b.WriteString("📈 <b>Ranking</b>\n\n")
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	for _, c := range rows {
		u := c.Upgrade
		mark := ""
		if !u.Available {
			mark = "* "
		}
		line := fmt.Sprintf("%s%s / %s : %s", mark, html.EscapeString(u.Section), html.EscapeString(u.Name), FormatPayback(u.PaybackHours))
		if u.Cooldown > 0 {
			line += fmt.Sprintf(" (cd: %ds)", int64(u.Cooldown.Seconds()))
		}
		if c.Feasible {
			line += fmt.Sprintf(" in %s", FormatDuration(c.At.Sub(now)))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
