package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dotshop/sheetsync/internal/sheets"
)

var createTitle string

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new product spreadsheet",
	Long: `Create provisions a new spreadsheet with a single product sheet,
writes the header row, freezes it, and prints the spreadsheet ID and URL.

Put the printed ID into your config as spreadsheet_id to sync against it.`,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVarP(&createTitle, "title", "t", "Affiliate Products", "spreadsheet title")
}

func runCreate(cobraCmd *cobra.Command, _ []string) error {
	ctx := cobraCmd.Context()

	client, err := sheets.New(ctx, cfg.CredentialsFile)
	if err != nil {
		return err
	}

	ref, url, err := client.CreateSpreadsheet(ctx, createTitle, cfg.SheetName)
	if err != nil {
		return err
	}

	fmt.Println("Spreadsheet ID:", ref.SpreadsheetID)
	fmt.Println("URL:", url)
	return nil
}
