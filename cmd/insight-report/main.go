// Command insight-report prints a user's transactions and summaries to the
// terminal, reading the same backend the web server uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/work4inventions/financeInsight/internal/backend"
	"github.com/work4inventions/financeInsight/internal/config"
	"github.com/work4inventions/financeInsight/internal/core"
	"github.com/work4inventions/financeInsight/internal/log"
)

func main() {
	userID := flag.String("user", "", "user id to report on (required)")
	groupBy := flag.String("by", "none", "grouping: none, month, or tag")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: insight-report -user <id> [-by none|month|tag]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", log.FieldError, err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	txs, err := result.Backend.ListAll(ctx, *userID)
	if err != nil {
		logger.Error("Failed to list transactions",
			log.FieldUserID, *userID, log.FieldError, err)
		os.Exit(1)
	}
	if len(txs) == 0 {
		fmt.Printf("No transactions for user %s\n", *userID)
		return
	}

	switch *groupBy {
	case "month":
		printMonthly(txs)
	case "tag":
		printTags(txs)
	case "none":
		printTransactions(txs)
	default:
		fmt.Fprintf(os.Stderr, "unknown grouping %q: must be none, month, or tag\n", *groupBy)
		os.Exit(2)
	}
}

func printTransactions(txs []core.Transaction) {
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})

	var income, expenses int64
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Date", "Type", "Name", "Tag", "Amount"})
	for _, t := range sorted {
		table.Append([]string{t.Date.ISO(), string(t.Type), t.Name, t.Tag, formatCents(t.Amount.Cents)})
		if t.Type == core.Income {
			income += t.Amount.Cents
		} else {
			expenses += t.Amount.Cents
		}
	}
	table.SetFooter([]string{"", "", "", "Balance", formatCents(income - expenses)})
	table.Render()

	fmt.Printf("\nIncome %s, expenses %s across %d transactions\n",
		formatCents(income), formatCents(expenses), len(sorted))
}

func printMonthly(txs []core.Transaction) {
	income, expenses := partition(txs)

	type monthKey struct{ year, month int }
	labels := make(map[monthKey]string)
	incomeByMonth := make(map[monthKey]int64)
	expensesByMonth := make(map[monthKey]int64)
	for _, b := range core.MonthlyBuckets(income) {
		k := monthKey{b.Year, b.Month}
		labels[k] = b.Label
		incomeByMonth[k] = b.Total.Cents
	}
	for _, b := range core.MonthlyBuckets(expenses) {
		k := monthKey{b.Year, b.Month}
		labels[k] = b.Label
		expensesByMonth[k] = b.Total.Cents
	}

	keys := make([]monthKey, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].month < keys[j].month
	})

	var totalIn, totalOut int64
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Month", "Income", "Expenses", "Net"})
	for _, k := range keys {
		in, out := incomeByMonth[k], expensesByMonth[k]
		totalIn += in
		totalOut += out
		table.Append([]string{labels[k], formatCents(in), formatCents(out), formatCents(in - out)})
	}
	table.SetFooter([]string{"Total", formatCents(totalIn), formatCents(totalOut), formatCents(totalIn - totalOut)})
	table.Render()
}

func printTags(txs []core.Transaction) {
	_, expenses := partition(txs)
	if len(expenses) == 0 {
		fmt.Println("No expenses to group by tag")
		return
	}

	var total int64
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Tag", "Spent"})
	for _, b := range core.TagBuckets(expenses) {
		table.Append([]string{b.Tag, formatCents(b.Total.Cents)})
		total += b.Total.Cents
	}
	table.SetFooter([]string{"Total", formatCents(total)})
	table.Render()
}

func partition(txs []core.Transaction) (income, expenses []core.Transaction) {
	for _, t := range txs {
		if t.Type == core.Income {
			income = append(income, t)
		} else {
			expenses = append(expenses, t)
		}
	}
	return income, expenses
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
