package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/goclosing/internal/domain"
	"github.com/iho/goclosing/internal/infrastructure/auth"
	"github.com/iho/goclosing/internal/infrastructure/logger"
	"github.com/iho/goclosing/internal/infrastructure/postgres"
)

type options struct {
	baseURL  string
	timeout  time.Duration
	token    string
	tenantID string
	operator string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "goclosing-cli",
		Short:         "GoClosing CLI tool",
		Long:          `A command line interface for declaring and inspecting daily cash closures.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the GoClosing API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("GOCLOSING_TOKEN"), "Bearer token")
	rootCmd.PersistentFlags().StringVar(&opts.tenantID, "tenant", "", "Tenant ID (development mode, without a token)")
	rootCmd.PersistentFlags().StringVar(&opts.operator, "operator", "", "Operator ID (development mode, without a token)")

	rootCmd.AddCommand(
		newDeclareCmd(opts),
		newGetCmd(opts),
		newListCmd(opts),
		newMigrateCmd(),
		newTokenCmd(),
	)

	return rootCmd
}

func newDeclareCmd(opts *options) *cobra.Command {
	var (
		day            string
		idempotencyKey string
		amounts        = map[domain.Channel]*string{}
	)

	cmd := &cobra.Command{
		Use:   "declare",
		Short: "Declare the cash collected for a business day",
		Long: `Submit a blind declaration. Amounts are in major units, e.g. --cash 150.25.
Every channel must be given; use 0 for channels with no collections.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			declared := make(map[string]int64, len(amounts))
			for channel, raw := range amounts {
				money, err := domain.ParseMoney(*raw)
				if err != nil {
					return fmt.Errorf("--%s: %w", channelFlag(channel), err)
				}
				declared[string(channel)] = int64(money)
			}

			body, err := json.Marshal(map[string]any{
				"business_day": day,
				"declared":     declared,
			})
			if err != nil {
				return err
			}

			req, err := opts.newRequest(cmd, http.MethodPost, "/api/v1/closures", bytes.NewReader(body))
			if err != nil {
				return err
			}
			if idempotencyKey != "" {
				req.Header.Set("Idempotency-Key", idempotencyKey)
			}

			return opts.do(cmd, req)
		},
	}

	cmd.Flags().StringVar(&day, "day", time.Now().Format(domain.BusinessDayLayout), "Business day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")
	for _, channel := range domain.AllChannels() {
		amounts[channel] = cmd.Flags().String(channelFlag(channel), "0", "Amount collected via "+string(channel))
	}

	return cmd
}

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <business-day>",
		Short: "Show the closure of a business day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := domain.ParseBusinessDay(args[0])
			if err != nil {
				return err
			}

			req, err := opts.newRequest(cmd, http.MethodGet, "/api/v1/closures/"+day.String(), nil)
			if err != nil {
				return err
			}
			return opts.do(cmd, req)
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	var (
		from, to, status string
		limit, offset    int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List closures over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("from", from)
			query.Set("to", to)
			if status != "" {
				query.Set("status", status)
			}
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))

			req, err := opts.newRequest(cmd, http.MethodGet, "/api/v1/closures?"+query.Encode(), nil)
			if err != nil {
				return err
			}
			return opts.do(cmd, req)
		},
	}

	today := time.Now().Format(domain.BusinessDayLayout)
	cmd.Flags().StringVar(&from, "from", time.Now().AddDate(0, 0, -30).Format(domain.BusinessDayLayout), "First business day (inclusive)")
	cmd.Flags().StringVar(&to, "to", today, "Last business day (inclusive)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (MATCH or DIVERGENT)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	return cmd
}

func newMigrateCmd() *cobra.Command {
	var databaseURL, path string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	migrateCmd.PersistentFlags().StringVar(&path, "path", "migrations", "Migrations directory")

	migrator := func(cmd *cobra.Command) (*postgres.Migrator, error) {
		if databaseURL == "" {
			return nil, fmt.Errorf("--database-url or DATABASE_URL is required")
		}
		log := logger.NewWithWriter(logger.Config{Level: "info", Format: "console"}, cmd.ErrOrStderr())
		return postgres.NewMigrator(databaseURL, path, log), nil
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator(cmd)
			if err != nil {
				return err
			}
			return m.Up()
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator(cmd)
			if err != nil {
				return err
			}
			return m.Down(steps)
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator(cmd)
			if err != nil {
				return err
			}
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %v\n", version, dirty)
			return nil
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, versionCmd)
	return migrateCmd
}

func newTokenCmd() *cobra.Command {
	var (
		secret     string
		tenantID   string
		operatorID string
		role       string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed operator token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(&domain.Operator{
				ID:       operatorID,
				TenantID: tenantID,
				Role:     domain.Role(role),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&operatorID, "operator", "", "Operator ID")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleFrontDesk), "Operator role")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func channelFlag(c domain.Channel) string {
	switch c {
	case domain.ChannelCash:
		return "cash"
	case domain.ChannelCardTerminal:
		return "card"
	case domain.ChannelBankTransfer:
		return "bank"
	case domain.ChannelMobileMoney:
		return "mobile"
	default:
		return string(c)
	}
}

func (o *options) newRequest(cmd *cobra.Command, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(cmd.Context(), method, o.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	switch {
	case o.token != "":
		req.Header.Set("Authorization", "Bearer "+o.token)
	case o.tenantID != "" && o.operator != "":
		req.Header.Set("X-Tenant-ID", o.tenantID)
		req.Header.Set("X-Operator-ID", o.operator)
	default:
		return nil, fmt.Errorf("either --token or both --tenant and --operator are required")
	}

	return req, nil
}

func (o *options) do(cmd *cobra.Command, req *http.Request) error {
	client := &http.Client{Timeout: o.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	if resp.Header.Get("X-Idempotency-Replay") == "true" {
		fmt.Fprintln(cmd.ErrOrStderr(), "note: replayed an existing closure")
	}

	return printJSON(cmd.OutOrStdout(), body)
}

func printJSON(w io.Writer, raw []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		_, werr := w.Write(raw)
		return werr
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return err
}
