package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/satistakip/cariledger/internal/infrastructure/auth"
)

var (
	baseURL   string
	timeout   time.Duration
	companyID string
	userID    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cariledger-cli",
		Short: "CariLedger CLI tool",
		Long:  `A command line interface for interacting with the CariLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the CariLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&companyID, "company", "", "Company ID to act as")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "Legacy user ID to act as")

	// Account commands
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}
	accountCmd.AddCommand(balanceCmd(), statementCmd(), reconcileAccountCmd())
	rootCmd.AddCommand(accountCmd)

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(ledgerCmd)

	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/accounts/" + url.PathEscape(args[0]) + "/balance")
		},
	}
}

func statementCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "statement <account-id>",
		Short: "Show an account statement (ekstre) with running balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/statement"
			query := url.Values{}
			if from != "" {
				query.Set("from", from)
			}
			if to != "" {
				query.Set("to", to)
			}
			if len(query) > 0 {
				path += "?" + query.Encode()
			}
			get(path)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")

	return cmd
}

func reconcileAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <account-id>",
		Short: "Compare the cached balance of one account against the journal",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/accounts/" + url.PathEscape(args[0]) + "/reconciliation")
		},
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Check every account of the tenant against the journal",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/reconciliation")
		},
	}
}

func tokenCmd() *cobra.Command {
	var secret, role string
	var expiration time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generate a development JWT for the given tenant",
		Run: func(cmd *cobra.Command, args []string) {
			if secret == "" {
				fmt.Println("a signing secret is required (--secret)")
				os.Exit(1)
			}
			if companyID == "" && userID == "" {
				fmt.Println("a tenant is required (--company or --user)")
				os.Exit(1)
			}

			manager := auth.NewJWTManager(secret, expiration)
			token, err := manager.Generate(userID, companyID, role)
			if err != nil {
				fmt.Printf("failed to generate token: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(token)
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret")
	cmd.Flags().StringVar(&role, "role", "", "Role claim")
	cmd.Flags().DurationVar(&expiration, "expiration", 24*time.Hour, "Token lifetime")

	return cmd
}

func get(path string) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	setTenantHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	printJSON(result)
}

func setTenantHeaders(req *http.Request) {
	if companyID != "" {
		req.Header.Set("X-Company-ID", companyID)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render response: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
