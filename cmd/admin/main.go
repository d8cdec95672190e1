package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"storefront/internal/client"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/importer"
	"storefront/internal/session"
	"storefront/internal/store"
)

func main() {
	cmd := &cli.Command{
		Name:  "storefront-admin",
		Usage: "Operational helpers for the storefront API",
		Commands: []*cli.Command{
			{
				Name:   "generate-keys",
				Usage:  "Print new session cookie keys for .env",
				Action: generateKeys,
			},
			{
				Name:  "token",
				Usage: "Issue a signed bearer token for local testing",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Usage: "user id (token subject)", Required: true},
					&cli.StringFlag{Name: "email", Usage: "email claim"},
					&cli.StringFlag{Name: "name", Usage: "display name claim"},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
				},
				Action: issueToken,
			},
			{
				Name:  "export",
				Usage: "Write the catalog to a .csv or .xlsx file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Value: "products.xlsx", Usage: "output path"},
					&cli.StringFlag{Name: "category", Usage: "only export this category"},
				},
				Action: exportCatalog,
			},
			{
				Name:  "catalog",
				Usage: "List products from a running API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api", Value: "http://localhost:8080", Usage: "API base URL"},
					&cli.StringFlag{Name: "category", Usage: "filter by category"},
					&cli.StringFlag{Name: "search", Usage: "filter by name substring"},
					&cli.BoolFlag{Name: "new-arrivals", Usage: "only new arrivals"},
				},
				Action: listCatalog,
			},
			{
				Name:  "order",
				Usage: "Show an order from a running API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "api", Value: "http://localhost:8080", Usage: "API base URL"},
					&cli.IntFlag{Name: "id", Usage: "order id", Required: true},
					&cli.StringFlag{Name: "token", Usage: "bearer token of the order owner"},
				},
				Action: showOrder,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func generateKeys(_ context.Context, _ *cli.Command) error {
	auth, enc, err := session.GenerateKeys()
	if err != nil {
		return err
	}
	fmt.Printf("SESSION_AUTH_KEY=%s\nSESSION_ENC_KEY=%s\n", auth, enc)
	return nil
}

func issueToken(_ context.Context, c *cli.Command) error {
	cfg := config.FromEnv()
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	tok, err := session.IssueToken([]byte(cfg.JWTSecret), c.String("user"), c.String("email"), c.String("name"), c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func exportCatalog(ctx context.Context, c *cli.Command) error {
	cfg := config.FromEnv()
	backend, err := store.Open(ctx, cfg.DBDriver, cfg.DBConnString, nil)
	if err != nil {
		return err
	}
	defer backend.Close()

	products, err := backend.Products.List(ctx, domain.ProductFilter{Category: c.String("category")})
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	out := c.String("out")
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(out)) {
	case ".csv":
		err = importer.WriteCSV(f, products)
	case ".xlsx":
		err = importer.WriteXLSX(f, products)
	default:
		return fmt.Errorf("unsupported file type %q (want .csv or .xlsx)", filepath.Ext(out))
	}
	if err != nil {
		return err
	}
	log.Printf("exported %d products to %s", len(products), out)
	return nil
}

func listCatalog(ctx context.Context, c *cli.Command) error {
	api, err := client.New(c.String("api"))
	if err != nil {
		return err
	}
	products, err := api.ListProducts(ctx, client.ProductQuery{
		Category:    c.String("category"),
		Search:      c.String("search"),
		NewArrivals: c.Bool("new-arrivals"),
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, p.Price, p.Stock)
	}
	return w.Flush()
}

func showOrder(ctx context.Context, c *cli.Command) error {
	var opts []client.Option
	if tok := c.String("token"); tok != "" {
		opts = append(opts, client.WithToken(tok))
	}
	api, err := client.New(c.String("api"), opts...)
	if err != nil {
		return err
	}
	o, err := api.GetOrder(ctx, c.Int("id"))
	if err != nil {
		return err
	}

	fmt.Printf("Order #%d  %s  total %s\n", o.ID, o.Status, o.TotalAmount)
	for _, it := range o.Items {
		fmt.Printf("  %d x product %d @ %s\n", it.Quantity, it.ProductID, it.Price)
	}
	return nil
}
