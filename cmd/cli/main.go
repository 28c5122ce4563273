package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "contas-cli",
		Short: "Contas CLI tool",
		Long:  `A command line interface for interacting with the Contas API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Contas API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountsCmd())
	rootCmd.AddCommand(entriesCmd())
	rootCmd.AddCommand(seriesCmd())
	rootCmd.AddCommand(billCmd())
	rootCmd.AddCommand(goalProgressCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/accounts/")
		},
	})

	var initialBalance string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/accounts/", map[string]any{
				"name":            args[0],
				"initial_balance": initialBalance,
			})
		},
	}
	createCmd.Flags().StringVar(&initialBalance, "balance", "0", "Initial balance")
	cmd.AddCommand(createCmd)

	var newBalance, reason string
	adjustCmd := &cobra.Command{
		Use:   "adjust <account-id>",
		Short: "Adjust an account balance to a target value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return putJSON("/api/v1/accounts/"+args[0]+"/balance", map[string]any{
				"new_balance": newBalance,
				"description": reason,
			})
		},
	}
	adjustCmd.Flags().StringVar(&newBalance, "to", "", "Target balance")
	adjustCmd.Flags().StringVar(&reason, "reason", "", "Adjustment description")
	_ = adjustCmd.MarkFlagRequired("to")
	cmd.AddCommand(adjustCmd)

	return cmd
}

func entriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Entry operations",
	}

	var month, year int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/entries/"
			if month > 0 && year > 0 {
				path = fmt.Sprintf("%s?month=%d&year=%d", path, month, year)
			}
			return getJSON(path)
		},
	}
	listCmd.Flags().IntVar(&month, "month", 0, "Filter by month (1-12)")
	listCmd.Flags().IntVar(&year, "year", 0, "Filter by year")
	cmd.AddCommand(listCmd)

	var kind, amount, description, occursOn, accountID, cardID, categoryID string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Record a single entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			occurs, err := time.Parse("2006-01-02", occursOn)
			if err != nil {
				return fmt.Errorf("parsing --on: %w", err)
			}
			payload := map[string]any{
				"kind":        kind,
				"amount":      amount,
				"description": description,
				"occurs_on":   occurs.Format(time.RFC3339),
			}
			if accountID != "" {
				payload["account_id"] = accountID
			}
			if cardID != "" {
				payload["card_id"] = cardID
			}
			if categoryID != "" {
				payload["category_id"] = categoryID
			}
			return postJSON("/api/v1/entries/", payload)
		},
	}
	addCmd.Flags().StringVar(&kind, "kind", "expense", "Entry kind (expense, income, transfer)")
	addCmd.Flags().StringVar(&amount, "amount", "", "Amount")
	addCmd.Flags().StringVar(&description, "desc", "", "Description")
	addCmd.Flags().StringVar(&occursOn, "on", "", "Occurrence date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&accountID, "account", "", "Funding account ID")
	addCmd.Flags().StringVar(&cardID, "card", "", "Funding card ID")
	addCmd.Flags().StringVar(&categoryID, "category", "", "Category ID")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("on")
	cmd.AddCommand(addCmd)

	var discount string
	anticipateCmd := &cobra.Command{
		Use:   "anticipate <entry-id>",
		Short: "Pull a future installment into the current bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{}
			if discount != "" {
				payload["discount"] = discount
			}
			return postJSON("/api/v1/entries/"+args[0]+"/anticipate", payload)
		},
	}
	anticipateCmd.Flags().StringVar(&discount, "discount", "", "Cash discount for paying early")
	cmd.AddCommand(anticipateCmd)

	return cmd
}

func seriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Series operations",
	}

	var delta int
	moveCmd := &cobra.Command{
		Use:   "move <series-id>",
		Short: "Shift every member of a series by N periods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/series/"+args[0]+"/move", map[string]any{
				"delta_periods": delta,
			})
		},
	}
	moveCmd.Flags().IntVar(&delta, "by", 1, "Periods to shift, negative moves earlier")
	cmd.AddCommand(moveCmd)

	var from int
	truncateCmd := &cobra.Command{
		Use:   "truncate <series-id>",
		Short: "Drop a series tail from an installment onward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return postJSON("/api/v1/series/"+args[0]+"/truncate", map[string]any{
				"from_installment": from,
			})
		},
	}
	truncateCmd.Flags().IntVar(&from, "from", 1, "First installment to remove (1-based)")
	cmd.AddCommand(truncateCmd)

	return cmd
}

func billCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Card bill operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <card-id> <period>",
		Short: "Show a card bill for a period (YYYY-MM)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/cards/%s/bills/%s", args[0], args[1]))
		},
	})

	var accountID string
	payCmd := &cobra.Command{
		Use:   "pay <card-id> <period>",
		Short: "Settle a card bill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{}
			if accountID != "" {
				payload["account_id"] = accountID
			}
			return postJSON(fmt.Sprintf("/api/v1/cards/%s/bills/%s/pay", args[0], args[1]), payload)
		},
	}
	payCmd.Flags().StringVar(&accountID, "account", "", "Paying account, defaults to the card's payment account")
	cmd.AddCommand(payCmd)

	return cmd
}

func goalProgressCmd() *cobra.Command {
	var categoryID, goalType string
	var month, year int
	cmd := &cobra.Command{
		Use:   "goal-progress",
		Short: "Show goal progress for a category and period",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/goals/progress?category_id=%s&goal_type=%s&month=%d&year=%d",
				categoryID, goalType, month, year)
			return getJSON(path)
		},
	}
	cmd.Flags().StringVar(&categoryID, "category", "", "Category ID")
	cmd.Flags().StringVar(&goalType, "type", "expense", "Goal type (expense or income)")
	cmd.Flags().IntVar(&month, "month", 0, "Month (1-12)")
	cmd.Flags().IntVar(&year, "year", 0, "Year")
	return cmd
}

func getJSON(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func postJSON(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func putJSON(path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPut, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
	}

	if len(body) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		fmt.Println(string(body))
		return nil
	}

	printJSON(decoded)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(out))
}
