package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/noah-isme/backend-komisi/internal/commission"
	"github.com/noah-isme/backend-komisi/internal/db/migrations"
	"github.com/noah-isme/backend-komisi/internal/gate"
)

func main() {
	_ = godotenv.Load()
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		code := 1
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			code = exit.ExitCode()
		}
		os.Exit(code)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "commissionctl",
		Usage:     "commission calculator and maintenance tasks",
		Writer:    out,
		ErrWriter: out,
		// main owns the exit code.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			allocateCommand(),
			hashCommand(),
			migrateCommand(),
		},
	}
}

func allocateCommand() *cli.Command {
	return &cli.Command{
		Name:      "allocate",
		Usage:     "split an invoice total into special products and the rest",
		ArgsUsage: "TOTAL",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "rest", Value: 25, Usage: "commission percentage applied to the rest amount"},
			&cli.StringSliceFlag{Name: "product", Aliases: []string{"p"}, Usage: "special product as name:amount:percentage (repeatable)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("allocate requires exactly one TOTAL argument", 2)
			}
			total, err := strconv.ParseFloat(c.Args().First(), 64)
			if err != nil || total < 0 {
				return cli.Exit(fmt.Sprintf("invalid total %q", c.Args().First()), 2)
			}
			rest := c.Float64("rest")
			if rest < 0 || rest > 100 {
				return cli.Exit("rest must be between 0 and 100", 2)
			}
			items := make([]commission.ProductAmount, 0, len(c.StringSlice("product")))
			for _, raw := range c.StringSlice("product") {
				item, err := parseProduct(raw)
				if err != nil {
					return cli.Exit(err.Error(), 2)
				}
				items = append(items, item)
			}
			res := commission.Allocate(total, items, rest)
			writeResult(c.App.Writer, res)
			if res.OverAllocated(total) {
				fmt.Fprintln(c.App.Writer, "warning: special amounts exceed the total; rest clamped to 0")
			}
			return nil
		},
	}
}

func parseProduct(raw string) (commission.ProductAmount, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return commission.ProductAmount{}, fmt.Errorf("invalid product %q, want name:amount:percentage", raw)
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || amount < 0 {
		return commission.ProductAmount{}, fmt.Errorf("invalid amount in %q", raw)
	}
	pct, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil || pct < 0 || pct > 100 {
		return commission.ProductAmount{}, fmt.Errorf("invalid percentage in %q", raw)
	}
	return commission.ProductAmount{Name: strings.TrimSpace(parts[0]), Amount: amount, Percentage: pct}, nil
}

func writeResult(out io.Writer, res commission.Result) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tAMOUNT\tPCT\tCOMMISSION")
	for _, l := range res.Breakdown {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%s\n", l.Name, commission.Format(l.Amount), l.Percentage, commission.Format(l.Commission))
	}
	fmt.Fprintf(tw, "(rest)\t%s\t%g\t%s\n", commission.Format(res.RestAmount), res.RestPercentage, commission.Format(res.RestCommission))
	fmt.Fprintf(tw, "TOTAL\t\t\t%s\n", commission.Format(res.TotalCommission))
	_ = tw.Flush()
}

func hashCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-passphrase",
		Usage:     "print the argon2id hash of a gate passphrase",
		ArgsUsage: "PASSPHRASE",
		Action: func(c *cli.Context) error {
			pass := c.Args().First()
			if gate.CheckStrength(pass) != nil {
				return cli.Exit(fmt.Sprintf("passphrase must be at least %d characters", gate.MinPassphraseLength), 2)
			}
			hash, err := gate.HashPassphrase(pass)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, hash)
			return nil
		},
	}
}

func migrateCommand() *cli.Command {
	dbFlag := &cli.StringFlag{Name: "database-url", EnvVars: []string{"DATABASE_URL"}, Required: true}
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply or roll back schema migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Flags: []cli.Flag{dbFlag},
				Action: func(c *cli.Context) error {
					if err := migrations.Up(c.String("database-url")); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "migrations applied")
					return nil
				},
			},
			{
				Name:  "down",
				Flags: []cli.Flag{dbFlag, &cli.IntFlag{Name: "steps", Value: 1}},
				Action: func(c *cli.Context) error {
					if err := migrations.Down(c.String("database-url"), c.Int("steps")); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "rolled back %d migration(s)\n", c.Int("steps"))
					return nil
				},
			},
		},
	}
}
