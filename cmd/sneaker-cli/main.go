// sneaker-cli exercises the sneaker service from the command line.
//
// Usage:
//
//	sneaker-cli predict shoe.jpg
//	sneaker-cli inventory --page 2
//	sneaker-cli add --price 120 --quantity 2 shoe.jpg
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/solekit/telegram-sneaker-bot/config"
	"github.com/solekit/telegram-sneaker-bot/internal/bot"
	"github.com/solekit/telegram-sneaker-bot/internal/inventory"
	"github.com/solekit/telegram-sneaker-bot/internal/prediction"
	"github.com/solekit/telegram-sneaker-bot/internal/sneakerapi"
)

func main() {
	config.LoadEnvFile()

	app := &cli.App{
		Name:    "sneaker-cli",
		Usage:   "Query the sneaker prediction and inventory service",
		Version: fmt.Sprintf("%s (built: %s)", bot.Version, bot.BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Value:   config.DefaultServiceURL,
				Usage:   "Base URL of the sneaker service",
				EnvVars: []string{"SNEAKER_API_URL"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 60 * time.Second,
				Usage: "Timeout for each command",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log requests",
			},
		},
		Before: func(c *cli.Context) error {
			level := zerolog.WarnLevel
			if c.Bool("verbose") {
				level = zerolog.DebugLevel
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
			return config.ValidateServiceURL(c.String("url"))
		},
		Commands: []*cli.Command{
			predictCommand(),
			inventoryCommand(),
			addCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(c *cli.Context) *sneakerapi.Client {
	return sneakerapi.NewClient(sneakerapi.ClientOpts{BaseURL: c.String("url")})
}

func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, c.Duration("timeout"))
}

// predictImage reads the image named by the first argument and predicts it.
func predictImage(c *cli.Context, client *sneakerapi.Client) (prediction.Result, error) {
	path := c.Args().First()
	if path == "" {
		return prediction.Result{}, errors.New("image path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return prediction.Result{}, fmt.Errorf("failed to read image: %w", err)
	}

	ctx, cancel := commandContext(c)
	defer cancel()
	return client.Predict(ctx, data, filepath.Base(path))
}

// =============================================================================
// PREDICT COMMAND
// =============================================================================

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:      "predict",
		Usage:     "Classify and price an image",
		ArgsUsage: "<image>",
		Action: func(c *cli.Context) error {
			result, err := predictImage(c, newClient(c))
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}
}

func printResult(r prediction.Result) {
	if err := r.ShapeError(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	outcome := prediction.Decide(r)
	fmt.Printf("Outcome:     %s\n", outcome)
	if badge := prediction.Badge(r, outcome); badge != "" {
		fmt.Printf("Badge:       %s\n", badge)
	}
	fmt.Printf("Class:       %s\n", orDash(r.ClassName))
	fmt.Printf("Item:        %s\n", itemName(r.Brand, r.ModelName))
	if outcome != prediction.OutcomeRejected {
		fmt.Printf("Confidence:  %s (%s)\n", r.Confidence.Percent(), orDash(string(r.Tier())))
		fmt.Printf("Predicted:   %s\n", r.PredictedPrice.Money())
		fmt.Printf("Retail:      %s\n", r.RetailPriceUSD.Money())
		fmt.Printf("Slug:        %s\n", r.SlugDisplay())

		rec := prediction.Reconcile(r)
		if rec.Existing {
			fmt.Printf("Inventory:   %d in stock at %s\n", rec.CurrentQuantity, rec.EffectivePrice.Money())
		} else {
			fmt.Printf("Inventory:   new item, suggested %s\n", rec.SuggestedPrice.Money())
		}
	}

	action := prediction.CommitActionFor(r)
	if action.Offered {
		fmt.Printf("Action:      %s\n", action.Label)
	} else {
		fmt.Println("Action:      none")
	}

	panel := prediction.PanelFor(r)
	fmt.Printf("Similar:     %s\n", panel.Kind)
	for i, item := range panel.Items {
		fmt.Printf("  %d. %s %s\n", i+1, orDash(item.Slug), item.Score.Percent())
	}
	if r.ServiceError != "" {
		fmt.Printf("Error:       %s\n", r.ServiceError)
	}
}

func itemName(brand, model string) string {
	return orDash(strings.TrimSpace(strings.TrimSpace(brand) + " " + strings.TrimSpace(model)))
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return prediction.Unknown
	}
	return s
}

// =============================================================================
// INVENTORY COMMAND
// =============================================================================

func inventoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "inventory",
		Usage: "List the inventory",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "page",
				Value: 1,
				Usage: "Page to show",
			},
			&cli.IntFlag{
				Name:  "per-page",
				Value: inventory.PerPage,
				Usage: "Rows per page",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := commandContext(c)
			defer cancel()

			records, err := newClient(c).ListInventory(ctx)
			if err != nil {
				return err
			}

			view := inventory.Paginate(inventory.BuildRows(records), c.Int("page"), c.Int("per-page"))
			if view.Empty() {
				fmt.Println("Inventory is empty.")
				return nil
			}

			fmt.Printf("Page %d/%d, %d items\n\n", view.Page, view.TotalPages, view.Total)
			for _, row := range view.Rows {
				fmt.Printf("%-8s %-32s %-20s qty %-3d predicted %-10s yours %s\n",
					orDash(row.Label), row.Title, orDash(row.Subtitle), row.Quantity, row.Predicted, row.UserPrice)
			}
			return nil
		},
	}
}

// =============================================================================
// ADD COMMAND
// =============================================================================

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Predict an image and add the item to the inventory",
		ArgsUsage: "<image>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "price",
				Usage: "Price to store (defaults to the predicted price)",
			},
			&cli.StringFlag{
				Name:  "quantity",
				Value: "1",
				Usage: "Quantity to add",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Validate without saving",
			},
		},
		Action: func(c *cli.Context) error {
			client := newClient(c)
			result, err := predictImage(c, client)
			if err != nil {
				return err
			}
			printResult(result)
			fmt.Println()

			action := prediction.CommitActionFor(result)
			if !action.Offered {
				return errors.New("this result can't be added to the inventory")
			}

			draft := prediction.NewAddDraft(result)
			if c.IsSet("price") {
				draft.PriceText = c.String("price")
			}
			draft.QuantityText = c.String("quantity")

			form, err := draft.Validate()
			if err != nil {
				return err
			}
			req := sneakerapi.NewCommitRequest(form)
			if c.Bool("dry-run") {
				fmt.Printf("Would add %d x %s at $%s\n", req.Quantity, orDash(req.Slug), form.Price.StringFixed(2))
				return nil
			}

			ctx, cancel := commandContext(c)
			defer cancel()
			ack, err := client.CommitInventory(ctx, req)
			if err != nil {
				return err
			}
			if ack.Updated() {
				fmt.Printf("Inventory updated, quantity %d\n", ack.Quantity)
			} else {
				fmt.Printf("Added to inventory, quantity %d\n", ack.Quantity)
			}
			return nil
		},
	}
}
