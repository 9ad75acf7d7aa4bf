// fincas is the command line client for the fincas store service. It
// keeps a session token between invocations and renders the filtered
// transaction list together with the summary derived from it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"fincas/internal/client"
	"fincas/internal/config"
	"fincas/internal/controller"
	"fincas/internal/core"
	"fincas/internal/log"
)

const usage = `usage: fincas <command> [flags]

commands:
  register   create an account and log in
  login      log in to the store
  logout     forget the saved session
  me         show the logged-in account
  list       list transactions (supports filter flags)
  summary    show totals, balance and category breakdown
  add        record a transaction
  rm         delete a transaction by id
  categories list the available categories
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	logger := log.New(log.Config{Level: log.DefaultConfig().Level, Component: "cli"})
	cfg := config.Load()

	app := &app{
		tokenPath: tokenPath(),
		logger:    logger,
	}
	app.client = client.New(cfg.StoreBaseURL, app.loadSession(), logger, cfg.CategoryCacheTTL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "fincas:", errorText(err))
		os.Exit(1)
	}
}

type app struct {
	client    *client.Client
	tokenPath string
	logger    *log.Logger
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.client.Logout()
		return os.Remove(a.tokenPath)
	case "me":
		return a.me(ctx)
	case "list":
		return a.list(ctx, args, false)
	case "summary":
		return a.list(ctx, args, true)
	case "add":
		return a.add(ctx, args)
	case "rm":
		return a.remove(ctx, args)
	case "categories":
		return a.categories(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (min 8 characters)")
	fs.Parse(args)

	user, err := a.client.Register(ctx, client.Credentials{Name: *name, Email: *email, Password: *password})
	if err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Printf("registered and logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	user, err := a.client.Login(ctx, client.Credentials{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	if err := a.saveSession(); err != nil {
		return err
	}
	fmt.Printf("logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *app) me(ctx context.Context) error {
	user, err := a.client.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	return nil
}

func (a *app) list(ctx context.Context, args []string, summaryOnly bool) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	typ := fs.String("type", "", "income or expense")
	category := fs.String("category", "", "category id")
	start := fs.String("from", "", "start date (YYYY-MM-DD)")
	end := fs.String("to", "", "end date (YYYY-MM-DD)")
	fs.Parse(args)

	ctrl := controller.New(a.client, controller.WithLogger(a.logger))

	var patch core.FilterPatch
	if *typ != "" {
		patch.Type = typ
	}
	if *category != "" {
		patch.CategoryID = category
	}
	if *start != "" {
		d, err := core.ParseDate(*start)
		if err != nil {
			return fmt.Errorf("invalid -from date: %w", err)
		}
		patch.StartDate = &d
	}
	if *end != "" {
		d, err := core.ParseDate(*end)
		if err != nil {
			return fmt.Errorf("invalid -to date: %w", err)
		}
		patch.EndDate = &d
	}

	if err := ctrl.SetFilter(ctx, patch); err != nil {
		return err
	}
	snap := ctrl.Snapshot()

	if !summaryOnly {
		if len(snap.Transactions) == 0 {
			fmt.Println("no transactions")
		}
		for _, tx := range snap.Transactions {
			sign := "+"
			if tx.Type == core.Expense {
				sign = "-"
			}
			category := ""
			if tx.Category != nil {
				category = tx.Category.Icon + " " + tx.Category.Name
			}
			fmt.Printf("%s  %s%8s  %-24s %-16s %s\n",
				tx.Date.String(), sign, tx.Amount.String(), truncate(tx.Description, 24), category, tx.ID)
		}
		fmt.Println()
	}

	fmt.Printf("income   %10s\n", snap.Summary.TotalIncome)
	fmt.Printf("expenses %10s\n", snap.Summary.TotalExpenses)
	fmt.Printf("balance  %10s\n", snap.Summary.Balance)
	fmt.Printf("savings  %9.1f%%\n", snap.Summary.SavingsRate())
	for _, entry := range snap.Summary.CategoryBreakdown {
		fmt.Printf("  %s %-16s %10s  %5.1f%%\n", entry.Icon, entry.Label, entry.Total, entry.Percent)
	}
	return nil
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	typ := fs.String("type", "expense", "income or expense")
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	description := fs.String("desc", "", "description")
	category := fs.String("category", "", "category id")
	date := fs.String("date", time.Now().Format("2006-01-02"), "date (YYYY-MM-DD)")
	fs.Parse(args)

	amt, err := core.ParseAmount(*amount)
	if err != nil {
		return fmt.Errorf("invalid -amount: %w", err)
	}
	day, err := core.ParseDate(*date)
	if err != nil {
		return fmt.Errorf("invalid -date: %w", err)
	}

	tx, err := a.client.CreateTransaction(ctx, client.TransactionDraft{
		Type:        core.TransactionType(*typ),
		Amount:      amt,
		Description: strings.TrimSpace(*description),
		CategoryID:  *category,
		Date:        day,
	})
	if err != nil {
		return err
	}
	fmt.Printf("recorded %s %s on %s (%s)\n", tx.Type, tx.Amount, tx.Date, tx.ID)
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: fincas rm <transaction-id>")
	}
	if err := a.client.DeleteTransaction(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("deleted", args[0])
	return nil
}

func (a *app) categories(ctx context.Context) error {
	cats, err := a.client.ListCategories(ctx)
	if err != nil {
		return err
	}
	for _, cat := range cats {
		fmt.Printf("%-14s %s %-16s %s\n", cat.ID, cat.Icon, cat.Name, cat.Type)
	}
	return nil
}

func tokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "fincas", "token")
}

// loadSession restores the saved token, if any. The user details are
// not persisted; commands that need them call /auth/me.
func (a *app) loadSession() *client.Session {
	session := client.NewSession()
	raw, err := os.ReadFile(a.tokenPath)
	if err != nil {
		return session
	}
	if token := strings.TrimSpace(string(raw)); token != "" {
		session.SetAuth(token, client.User{})
	}
	return session
}

func (a *app) saveSession() error {
	if err := os.MkdirAll(filepath.Dir(a.tokenPath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(a.tokenPath, []byte(a.client.Session().Token()), 0o600)
}

func errorText(err error) string {
	var se *client.Error
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	return err.Error()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
