package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/markdave123-py/insightcart/internal/app"
	"github.com/markdave123-py/insightcart/internal/metrics"
	"github.com/markdave123-py/insightcart/internal/models"
	"github.com/markdave123-py/insightcart/internal/services"
)

var auditFlags struct {
	name        string
	link        string
	description string
	category    string
	price       string
	audience    string
	country     string
	platform    string
	save        bool
	public      bool
	as          string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit a product and print the report as JSON",
	Long: `Audit a product from a link or from manual details.

A non-empty --link selects link-based analysis; otherwise the manual
fields are used as the only source. With --save the report is added to
the shared history under a user named by --as.`,
	RunE: runAudit,
}

func init() {
	f := auditCmd.Flags()
	f.StringVar(&auditFlags.name, "name", "", "Product name")
	f.StringVar(&auditFlags.link, "link", "", "Product page URL")
	f.StringVar(&auditFlags.description, "description", "", "Product description")
	f.StringVar(&auditFlags.category, "category", "", "Product category")
	f.StringVar(&auditFlags.price, "price", "", "Price")
	f.StringVar(&auditFlags.audience, "audience", "", "Target audience")
	f.StringVar(&auditFlags.country, "country", "", "Target region")
	f.StringVar(&auditFlags.platform, "platform", "", "Sales platform")
	f.BoolVar(&auditFlags.save, "save", false, "Persist the report to the shared history")
	f.BoolVar(&auditFlags.public, "public", false, "List the saved report on the public feed")
	f.StringVar(&auditFlags.as, "as", services.DefaultUserName, "Owner name for saved reports")
}

func auditInput() models.ProductInput {
	return models.ProductInput{
		Name:           auditFlags.name,
		ProductLink:    auditFlags.link,
		Description:    auditFlags.description,
		Category:       auditFlags.category,
		Price:          auditFlags.price,
		TargetAudience: auditFlags.audience,
		Country:        auditFlags.country,
		Platform:       auditFlags.platform,
	}
}

func runAudit(cmd *cobra.Command, _ []string) error {
	input := auditInput()
	if input.Name == "" && input.ProductLink == "" {
		return fmt.Errorf("either --name or --link is required")
	}
	if auditFlags.public && !auditFlags.save {
		return fmt.Errorf("--public requires --save")
	}

	cfg, log, err := env()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	m := metrics.NewRecorder()
	analyzer, gemini, err := app.NewAnalyzer(ctx, cfg, log, m)
	if err != nil {
		return err
	}
	defer gemini.Close()

	if !auditFlags.save {
		res, err := analyzer.Analyze(ctx, input)
		if err != nil {
			return fmt.Errorf("%s: %w", services.AuditFailedMessage, err)
		}
		return printJSON(cmd.OutOrStdout(), res)
	}

	ws, store, err := openWorkspace(ctx, cfg, log, m, analyzer)
	if err != nil {
		return err
	}
	defer store.Close()

	user := services.NewUser(auditFlags.as, "", time.Now())
	res, err := ws.Submit(ctx, user, input)
	if err != nil {
		return err
	}
	if auditFlags.public {
		if res, err = ws.SetListing(ctx, user, res.ID, true); err != nil {
			return err
		}
	}
	return printJSON(cmd.OutOrStdout(), res)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
