// Package main provides the sentiboard CLI entry point.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gauthierbraillon/sentiboard/internal/config"
	"github.com/gauthierbraillon/sentiboard/internal/display"
	"github.com/gauthierbraillon/sentiboard/internal/metrics"
	"github.com/gauthierbraillon/sentiboard/internal/records"
	"github.com/gauthierbraillon/sentiboard/internal/sentiment"
	"github.com/gauthierbraillon/sentiboard/internal/server"
	"github.com/gauthierbraillon/sentiboard/pkg/auth"
	"github.com/gauthierbraillon/sentiboard/pkg/browser"
	"github.com/gauthierbraillon/sentiboard/pkg/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveVersion prefers the ldflags version, then the module version recorded by go install.
func resolveVersion(ldflagsVersion string, bi *debug.BuildInfo) string {
	if ldflagsVersion != "dev" {
		return ldflagsVersion
	}
	if bi == nil || bi.Main.Version == "" || bi.Main.Version == "(devel)" {
		return "dev"
	}
	return bi.Main.Version
}

// app carries the settings resolved before any subcommand runs.
type app struct {
	configFile string
	v          *viper.Viper
	cfg        config.Config
}

// newRootCmd creates the root command for sentiboard CLI.
func newRootCmd() *cobra.Command {
	a := &app{}
	bi, _ := debug.ReadBuildInfo()

	rootCmd := &cobra.Command{
		Use:     "sentiboard",
		Short:   "Company sentiment dashboards from social media records",
		Long:    "Sentiboard aggregates scored social media posts about a company into a sentiment dashboard: summary, daily trend, top posts and key topics.",
		Version: resolveVersion(version, bi),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.SetVersionTemplate("sentiboard version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default .sentiboard.yaml in . or $HOME)")
	pf.String("api-url", config.DefaultAPIURL, "Records API base URL")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.Duration("timeout", config.DefaultTimeout, "Records API request timeout")

	rootCmd.AddCommand(newSentimentCmd(a))
	rootCmd.AddCommand(newAuthCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))

	return rootCmd
}

// load resolves configuration from .env, config file, environment and flags, then starts logging.
func (a *app) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	a.v = config.New(a.configFile)
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(cfg.LogLevel, cfg.LogEnv); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func (a *app) builder() *sentiment.Builder {
	opts := []sentiment.BuilderOption{
		sentiment.WithLogger(logger.Get().SugaredLogger),
		sentiment.WithTopPostsBound(a.cfg.Top),
		sentiment.WithMaxTopics(a.cfg.Topics),
	}
	if a.cfg.Stopwords {
		opts = append(opts, sentiment.WithStopwords(sentiment.DefaultStopwords))
	}
	return sentiment.NewBuilder(opts...)
}

func (a *app) tokenStorage() *auth.TokenStorage {
	return auth.NewTokenStorage(a.cfg.ConfigDir)
}

func (a *app) authFlow() *auth.Flow {
	return auth.NewFlow(a.cfg.APIURL, auth.WithHTTPClient(&http.Client{Timeout: a.cfg.Timeout}))
}

// fetcher returns the record source for a command: synthetic records in demo mode,
// otherwise the records API behind the configured cache.
func (a *app) fetcher(demo bool, seed uint64) records.Fetcher {
	log := logger.Get().SugaredLogger

	var next records.Fetcher
	if demo {
		next = records.SyntheticSource{Seed: seed}
	} else {
		var tokens records.TokenSource = records.StaticToken(a.cfg.Token)
		if a.cfg.Token == "" {
			tokens = auth.NewStoredTokenSource(a.authFlow(), a.tokenStorage(), auth.DefaultProfile)
		}
		next = records.NewClient(
			records.WithBaseURL(a.cfg.APIURL),
			records.WithHTTPClient(&http.Client{Timeout: a.cfg.Timeout}),
			records.WithTokenSource(tokens),
			records.WithLogger(log),
		)
	}

	if a.cfg.CacheTTL == 0 {
		return next
	}

	var store records.Store
	if a.cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
		store = records.NewRedisStore(client, a.cfg.CacheTTL)
	} else {
		store = records.NewMemoryStore(a.cfg.CacheSize, a.cfg.CacheTTL)
	}
	return records.NewCachedFetcher(next, store, log)
}

// explain turns fetch errors into actionable messages.
func explain(err error) error {
	switch {
	case errors.Is(err, auth.ErrTokenNotFound):
		return errors.New("not authenticated (run 'sentiboard auth login' or set SENTIBOARD_TOKEN)")
	case errors.Is(err, records.ErrUnauthorized), errors.Is(err, auth.ErrInvalidCredentials):
		return fmt.Errorf("credentials rejected (run 'sentiboard auth login'): %w", err)
	default:
		return err
	}
}

// newSentimentCmd creates the sentiment subcommand.
func newSentimentCmd(a *app) *cobra.Command {
	var output string
	var demo bool
	var all bool
	var seed uint64

	cmd := &cobra.Command{
		Use:   "sentiment <company>",
		Short: "Display the sentiment dashboard of a company",
		Long:  "Fetch a company's scored posts and display its sentiment summary, daily trend, top posts and key topics for a time window.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("invalid output %q: must be 'text' or 'json'", output)
			}
			company := strings.TrimSpace(args[0])
			if company == "" {
				return errors.New("company must not be empty")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
			defer cancel()

			raw, err := a.fetcher(demo, seed).FetchRawSentimentRecords(ctx, company)
			if err != nil {
				return explain(err)
			}

			now := time.Now().UTC()
			b := a.builder()

			if !all {
				cs := b.Build(company, raw, a.cfg.Filter, now)
				if output == "json" {
					return writeJSON(cmd.OutOrStdout(), cs)
				}
				return writeDashboards(cmd.OutOrStdout(), now, cs)
			}

			results, err := b.BuildAll(ctx, company, raw, now)
			if err != nil {
				return err
			}
			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			ordered := make([]sentiment.CompanySentiment, 0, len(results))
			for _, f := range sentiment.AllTimeFilters {
				ordered = append(ordered, results[f])
			}
			return writeDashboards(cmd.OutOrStdout(), now, ordered...)
		},
	}

	cmd.Flags().StringP("filter", "f", string(sentiment.Month), "Time window (day, week, month, sixMonths, year)")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	cmd.Flags().Int("top", sentiment.DefaultTopPostsBound, "Posts shown on each side of the top posts")
	cmd.Flags().Int("topics", sentiment.DefaultMaxTopics, "Maximum number of key topics")
	cmd.Flags().Bool("stopwords", false, "Drop common filler words from key topics")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL, "How long fetched records are cached (0 disables caching)")
	cmd.Flags().String("redis-addr", "", "Redis address for a shared record cache")
	cmd.Flags().BoolVar(&demo, "demo", false, "Use generated demo records instead of the records API")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for demo records")
	cmd.Flags().BoolVar(&all, "all", false, "Build the dashboard for every time window")

	return cmd
}

func writeDashboards(w io.Writer, now time.Time, results ...sentiment.CompanySentiment) error {
	formatter := display.NewTerminalFormatter()
	for i, cs := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		out, err := formatter.FormatDashboard(cs, now)
		if err != nil {
			return err
		}
		fmt.Fprint(w, out)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newAuthCmd creates the auth subcommand.
func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage records API credentials",
		Long:  "Log in to the records API, inspect the stored token or remove it.",
	}

	cmd.AddCommand(newAuthLoginCmd(a))
	cmd.AddCommand(newAuthLogoutCmd(a))
	cmd.AddCommand(newAuthStatusCmd(a))

	return cmd
}

func newAuthLoginCmd(a *app) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store an access token",
		Long:  "Exchange a username and password for API tokens. The password is read from SENTIBOARD_PASSWORD or standard input.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				username = os.Getenv(config.EnvPrefix + "_USERNAME")
			}
			if username == "" {
				return fmt.Errorf("missing username: use --username or set %s_USERNAME", config.EnvPrefix)
			}

			password := os.Getenv(config.EnvPrefix + "_PASSWORD")
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return fmt.Errorf("missing password: set %s_PASSWORD or type it on standard input", config.EnvPrefix)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
			defer cancel()

			fmt.Fprintf(cmd.OutOrStdout(), "Authenticating with %s...\n", a.cfg.APIURL)
			token, err := a.authFlow().Login(ctx, username, password)
			if err != nil {
				return err
			}

			if err := a.tokenStorage().Save(auth.DefaultProfile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully authenticated as %s!\n", username)
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to: %s\n", a.cfg.ConfigDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Records API username")

	return cmd
}

func newAuthLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tokenStorage().Delete(auth.DefaultProfile); err != nil {
				return fmt.Errorf("failed to remove token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newAuthStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a token is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if a.cfg.Token != "" {
				fmt.Fprintf(out, "Using static token from %s_TOKEN\n", config.EnvPrefix)
				return nil
			}

			token, err := a.tokenStorage().Load(auth.DefaultProfile)
			if errors.Is(err, auth.ErrTokenNotFound) {
				fmt.Fprintln(out, "Not authenticated (run 'sentiboard auth login')")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Authenticated")
			switch {
			case token.ExpiresAt.IsZero():
				fmt.Fprintln(out, "Access token expiry: unknown")
			case token.ExpiresWithin(time.Now(), 0):
				fmt.Fprintf(out, "Access token expired at %s (will refresh on next use)\n", token.ExpiresAt.Local().Format(time.RFC1123))
			default:
				fmt.Fprintf(out, "Access token expires at %s\n", token.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

// newServeCmd creates the serve subcommand.
func newServeCmd(a *app) *cobra.Command {
	var demo bool
	var seed uint64
	var open string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dashboards over HTTP",
		Long:  "Serve company dashboards as JSON at /api/companies/<company>/sentiment, with /healthz and Prometheus /metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			metrics.Init()
			log := logger.Get()

			srv := server.New(a.fetcher(demo, seed), a.builder(),
				server.WithLogger(log.SugaredLogger),
				server.WithDefaultFilter(a.cfg.Filter),
			)

			ln, err := net.Listen("tcp", a.cfg.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", a.cfg.Addr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", ln.Addr())

			if open != "" {
				u, err := browser.LocalURL(ln.Addr().String(), "/api/companies/"+open+"/sentiment")
				if err != nil {
					return err
				}
				if err := browser.Open(u); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Could not open browser. Please visit:\n%s\n", u)
				}
			}

			return srv.Serve(ctx, ln)
		},
	}

	cmd.Flags().String("addr", config.DefaultAddr, "Listen address")
	cmd.Flags().StringP("filter", "f", string(sentiment.Month), "Default time window when a request names none")
	cmd.Flags().Int("top", sentiment.DefaultTopPostsBound, "Posts shown on each side of the top posts")
	cmd.Flags().Int("topics", sentiment.DefaultMaxTopics, "Maximum number of key topics")
	cmd.Flags().Bool("stopwords", false, "Drop common filler words from key topics")
	cmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL, "How long fetched records are cached (0 disables caching)")
	cmd.Flags().String("redis-addr", "", "Redis address for a shared record cache")
	cmd.Flags().BoolVar(&demo, "demo", false, "Serve generated demo records instead of the records API")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for demo records")
	cmd.Flags().StringVar(&open, "open", "", "Open this company's dashboard in the browser once listening")

	return cmd
}

// newConfigCmd creates the config subcommand.
func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show resolved configuration",
		Long:  "View the sentiboard configuration after merging defaults, config file, environment and flags.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			file := a.v.ConfigFileUsed()
			if file == "" {
				file = "(none)"
			}
			redisAddr := a.cfg.RedisAddr
			if redisAddr == "" {
				redisAddr = "(in-memory cache)"
			}

			fmt.Fprintf(out, "Config file: %s\n", file)
			fmt.Fprintf(out, "Config directory: %s\n", a.cfg.ConfigDir)
			fmt.Fprintf(out, "API URL: %s\n", a.cfg.APIURL)
			fmt.Fprintf(out, "Filter: %s\n", a.cfg.Filter)
			fmt.Fprintf(out, "Top posts: %d\n", a.cfg.Top)
			fmt.Fprintf(out, "Topics: %d\n", a.cfg.Topics)
			fmt.Fprintf(out, "Cache TTL: %s\n", a.cfg.CacheTTL)
			fmt.Fprintf(out, "Redis: %s\n", redisAddr)
			fmt.Fprintf(out, "Listen address: %s\n", a.cfg.Addr)
			return nil
		},
	}

	return cmd
}
