package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag   string
	tokenFlag string
	rootCmd   = &cobra.Command{
		Use:   "journalctl",
		Short: "CLI client for the journal service REST API",
	}
)

func token() (string, error) {
	if tokenFlag != "" {
		return tokenFlag, nil
	}
	if v := os.Getenv("JOURNALCTL_TOKEN"); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("--token or JOURNALCTL_TOKEN required")
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Journal service base URL")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "", "Bearer token (defaults to JOURNALCTL_TOKEN)")

	signupCmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and print a token",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			return runSignup(apiFlag, email, password, os.Stdout)
		},
	}
	signupCmd.Flags().StringP("email", "e", "", "Email address (required)")
	signupCmd.Flags().StringP("password", "p", "", "Password (required)")
	_ = signupCmd.MarkFlagRequired("email")
	_ = signupCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(signupCmd)

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a token",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			return runLogin(apiFlag, email, password, os.Stdout)
		},
	}
	loginCmd.Flags().StringP("email", "e", "", "Email address (required)")
	loginCmd.Flags().StringP("password", "p", "", "Password (required)")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(loginCmd)

	areasCmd := &cobra.Command{Use: "areas", Short: "Manage growth areas"}
	areasCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List growth areas",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := token()
			if err != nil {
				return err
			}
			return runAreasList(apiFlag, tok, os.Stdout)
		},
	})
	areasAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a growth area",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := token()
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			desc, _ := cmd.Flags().GetString("description")
			return runAreasAdd(apiFlag, tok, name, desc, os.Stdout)
		},
	}
	areasAddCmd.Flags().StringP("name", "n", "", "Area name (required)")
	areasAddCmd.Flags().StringP("description", "d", "", "Area description")
	_ = areasAddCmd.MarkFlagRequired("name")
	areasCmd.AddCommand(areasAddCmd)
	rootCmd.AddCommand(areasCmd)

	entryCmd := &cobra.Command{Use: "entry", Short: "Work with single entries"}
	entryAddCmd := &cobra.Command{
		Use:   "add",
		Short: "Submit a journal entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := token()
			if err != nil {
				return err
			}
			text, _ := cmd.Flags().GetString("text")
			return runEntryAdd(apiFlag, tok, text, os.Stdout)
		},
	}
	entryAddCmd.Flags().StringP("text", "x", "", "Entry text (required)")
	_ = entryAddCmd.MarkFlagRequired("text")
	entryCmd.AddCommand(entryAddCmd)
	rootCmd.AddCommand(entryCmd)

	entriesCmd := &cobra.Command{
		Use:   "entries",
		Short: "List journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := token()
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			return runEntries(apiFlag, tok, limit, offset, os.Stdout)
		},
	}
	entriesCmd.Flags().IntP("limit", "l", 10, "Page size")
	entriesCmd.Flags().IntP("offset", "o", 0, "Page offset")
	rootCmd.AddCommand(entriesCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "timeline <area>",
		Short: "Show the timeline for one growth area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := token()
			if err != nil {
				return err
			}
			return runTimeline(apiFlag, tok, args[0], os.Stdout)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "memory",
		Short: "Show the persisted growth rollup",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := token()
			if err != nil {
				return err
			}
			return runMemory(apiFlag, tok, os.Stdout)
		},
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Show the cross-area growth summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := token()
			if err != nil {
				return err
			}
			return runSummary(apiFlag, tok, os.Stdout)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
