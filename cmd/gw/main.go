package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"glasswork/internal/config"
	"glasswork/internal/db"
	"glasswork/internal/domain"
	"glasswork/internal/engine"
	"glasswork/internal/migrate"
	"glasswork/internal/server"
	"glasswork/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "gw",
	Short: "Glasswork CLI",
	Long: `Glasswork runs a personal portfolio backend: availability status with an
append-only history, ordered project showcase, contact inbox, and profile
assets. The workspace is a .glasswork directory holding the database;
glasswork.yml configures the site, auth and webhooks.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		workspace := viper.GetString("workspace")
		if _, err := db.EnsureWorkspace(workspace); err != nil {
			return err
		}
		return nil
	},
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("GLASSWORK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("actor-id", "local-admin", "actor identifier")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("actor-id", rootCmd.PersistentFlags().Lookup("actor-id"))
}

func registerCommands() {
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(inboxCmd())
	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(apikeyCmd())
	rootCmd.AddCommand(logCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(serveCmd())
}

// --- status ---

func statusCmd() *cobra.Command {
	st := &cobra.Command{Use: "status", Short: "Manage availability status"}
	st.AddCommand(statusShowCmd())
	st.AddCommand(statusSetCmd())
	st.AddCommand(statusHistoryCmd())
	st.AddCommand(statusWatchCmd())
	return st
}

func statusShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				log, err := e.CurrentStatus(ctx)
				if err != nil {
					return err
				}
				return printJSONOrValue(log)
			})
		},
	}
}

func statusSetCmd() *cobra.Command {
	var known []string
	for _, s := range domain.KnownStatuses() {
		known = append(known, string(s))
	}
	return &cobra.Command{
		Use:   "set <value>",
		Short: "Set availability status",
		Long: "Set the availability status. Recognized values: " + strings.Join(known, ", ") + ".\n" +
			"Any other value is stored as a custom status and never counts as open to work.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := domain.ParseStatus(args[0]); !ok {
				fmt.Fprintf(os.Stderr, "note: %q is a custom status; it will not count as open to work\n", args[0])
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				log, err := e.SetStatus(ctx, args[0], viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOrValue(log)
			})
		},
	}
}

func statusHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show status history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				logs, err := e.StatusHistory(ctx, limit)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(logs)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Status", "Active", "At"})
				for _, log := range logs {
					tw.AppendRow(table.Row{log.ID, log.StatusText, log.IsActive, log.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries")
	return cmd
}

func statusWatchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow status changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				sub := e.Subscribe()
				defer sub.Close()
				e.StartStatusFeed(ctx, interval)
				for {
					select {
					case <-ctx.Done():
						return nil
					case log, ok := <-sub.C:
						if !ok {
							return nil
						}
						fmt.Printf("%s  %s\n", log.CreatedAt, log.StatusText)
					}
				}
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval")
	return cmd
}

// --- project ---

func projectCmd() *cobra.Command {
	prj := &cobra.Command{Use: "project", Short: "Manage showcase projects"}
	prj.AddCommand(projectListCmd())
	prj.AddCommand(projectCreateCmd())
	prj.AddCommand(projectShowCmd())
	prj.AddCommand(projectUpdateCmd())
	prj.AddCommand(projectDeleteCmd())
	prj.AddCommand(projectMoveCmd())
	prj.AddCommand(projectReconcileCmd())
	return prj
}

func projectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListProjects(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"#", "ID", "Title", "Tags"})
				for _, p := range items {
					tw.AppendRow(table.Row{p.DisplayOrder, p.ID, p.Title, strings.Join(p.Tags, ",")})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func projectCreateCmd() *cobra.Command {
	var opts engine.ProjectCreateOptions
	var tags []string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				opts.Tags = tags
				opts.ActorID = viper.GetString("actor-id")
				p, err := e.CreateProject(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrValue(p)
			})
		},
	}
	cmd.Flags().StringVar(&opts.Title, "title", "", "project title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "project description")
	cmd.Flags().StringVar(&opts.ImageURL, "image-url", "", "image URL")
	cmd.Flags().StringVar(&opts.GithubURL, "github-url", "", "GitHub URL")
	cmd.Flags().StringVar(&opts.LiveURL, "live-url", "", "live site URL")
	cmd.Flags().StringArrayVar(&tags, "tag", []string{}, "tag (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func projectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.GetProject(ctx, id)
				if err != nil {
					return err
				}
				return printJSONOrValue(p)
			})
		},
	}
}

func projectUpdateCmd() *cobra.Command {
	var title, description, imageURL, githubURL, liveURL string
	var tags []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				opts := engine.ProjectUpdateOptions{ActorID: viper.GetString("actor-id")}
				if cmd.Flags().Changed("title") {
					opts.Title = &title
				}
				if cmd.Flags().Changed("description") {
					opts.Description = &description
				}
				if cmd.Flags().Changed("image-url") {
					opts.ImageURL = &imageURL
				}
				if cmd.Flags().Changed("github-url") {
					opts.GithubURL = &githubURL
				}
				if cmd.Flags().Changed("live-url") {
					opts.LiveURL = &liveURL
				}
				if cmd.Flags().Changed("tag") {
					opts.Tags = tags
					opts.TagsSet = true
				}
				p, err := e.UpdateProject(ctx, id, opts)
				if err != nil {
					return err
				}
				return printJSONOrValue(p)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "project title")
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "image URL")
	cmd.Flags().StringVar(&githubURL, "github-url", "", "GitHub URL")
	cmd.Flags().StringVar(&liveURL, "live-url", "", "live site URL")
	cmd.Flags().StringArrayVar(&tags, "tag", []string{}, "tag (repeatable, replaces all)")
	return cmd
}

func projectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return e.DeleteProject(ctx, id, viper.GetString("actor-id"))
			})
		},
	}
}

func projectMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <up|down>",
		Short: "Move a project one slot up or down",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.MoveProject(ctx, id, engine.MoveDirection(args[1]), viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOrValue(items)
			})
		},
	}
}

func projectReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Repair the display ordering",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ReconcileProjects(ctx, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOrValue(items)
			})
		},
	}
}

// --- inbox ---

func inboxCmd() *cobra.Command {
	in := &cobra.Command{Use: "inbox", Short: "Manage contact messages"}
	in.AddCommand(inboxListCmd())
	in.AddCommand(inboxReadCmd())
	in.AddCommand(inboxDeleteCmd())
	return in
}

func inboxListCmd() *cobra.Command {
	var unread bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.ListMessages(ctx, unread)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "From", "Email", "Read", "At"})
				for _, m := range items {
					tw.AppendRow(table.Row{m.ID, m.SenderName, m.SenderEmail, m.IsRead, m.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread messages")
	return cmd
}

func inboxReadCmd() *cobra.Command {
	var unread bool
	cmd := &cobra.Command{
		Use:   "read <id>",
		Short: "Show a message and mark it read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				m, err := e.MarkMessageRead(ctx, id, !unread, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				return printJSONOrValue(m)
			})
		},
	}
	cmd.Flags().BoolVar(&unread, "unread", false, "mark unread instead")
	return cmd
}

func inboxDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return e.DeleteMessage(ctx, id, viper.GetString("actor-id"))
			})
		},
	}
}

// --- profile ---

func profileCmd() *cobra.Command {
	pr := &cobra.Command{Use: "profile", Short: "Manage the profile"}
	pr.AddCommand(profileShowCmd())
	pr.AddCommand(profileSetCmd())
	return pr
}

func profileShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				p, err := e.Profile(ctx)
				if err != nil {
					return err
				}
				return printJSONOrValue(p)
			})
		},
	}
}

func profileSetCmd() *cobra.Command {
	var bio, githubURL, linkedinURL, cvURL, certURL, imageURL string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				opts := engine.ProfileUpdateOptions{ActorID: viper.GetString("actor-id")}
				if cmd.Flags().Changed("bio") {
					opts.Bio = &bio
				}
				if cmd.Flags().Changed("github-url") {
					opts.GithubURL = &githubURL
				}
				if cmd.Flags().Changed("linkedin-url") {
					opts.LinkedinURL = &linkedinURL
				}
				if cmd.Flags().Changed("cv-url") {
					opts.CVURL = &cvURL
				}
				if cmd.Flags().Changed("certification-url") {
					opts.CertificationURL = &certURL
				}
				if cmd.Flags().Changed("image-url") {
					opts.ProfileImageURL = &imageURL
				}
				p, err := e.UpdateProfile(ctx, opts)
				if err != nil {
					return err
				}
				return printJSONOrValue(p)
			})
		},
	}
	cmd.Flags().StringVar(&bio, "bio", "", "bio text")
	cmd.Flags().StringVar(&githubURL, "github-url", "", "GitHub URL")
	cmd.Flags().StringVar(&linkedinURL, "linkedin-url", "", "LinkedIn URL")
	cmd.Flags().StringVar(&cvURL, "cv-url", "", "CV URL")
	cmd.Flags().StringVar(&certURL, "certification-url", "", "certification URL")
	cmd.Flags().StringVar(&imageURL, "image-url", "", "profile image URL")
	return cmd
}

// --- api keys ---

func apikeyCmd() *cobra.Command {
	ak := &cobra.Command{Use: "apikey", Short: "Manage API keys"}
	ak.AddCommand(apikeyCreateCmd())
	ak.AddCommand(apikeyListCmd())
	ak.AddCommand(apikeyRevokeCmd())
	return ak
}

func apikeyCreateCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				key, raw, err := e.CreateAPIKey(ctx, viper.GetString("actor-id"), name)
				if err != nil {
					return err
				}
				fmt.Printf("API key created (id=%s). Store the key now; it is not shown again:\n%s\n", key.ID, raw)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "key label")
	return cmd
}

func apikeyListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				keys, err := e.ListAPIKeys(ctx, viper.GetString("actor-id"))
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(keys)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Actor", "Created"})
				for _, k := range keys {
					tw.AppendRow(table.Row{k.ID, k.Name, k.ActorID, k.CreatedAt})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func apikeyRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <id>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return e.RevokeAPIKey(ctx, args[0], viper.GetString("actor-id"))
			})
		},
	}
}

// --- log ---

func logCmd() *cobra.Command {
	lg := &cobra.Command{Use: "log", Short: "Inspect the event log"}
	lg.AddCommand(logTailCmd())
	return lg
}

func logTailCmd() *cobra.Command {
	var n int
	var evtType string
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Tail events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				events, err := e.RecentEvents(ctx, n, 0, evtType)
				if err != nil {
					return err
				}
				return printJSONOrValue(events)
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 20, "number of events")
	cmd.Flags().StringVar(&evtType, "type", "", "event type filter")
	return cmd
}

// --- config ---

func configCmd() *cobra.Command {
	cf := &cobra.Command{Use: "config", Short: "Manage glasswork.yml"}
	cf.AddCommand(configInitCmd())
	cf.AddCommand(configShowCmd())
	return cf
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default glasswork.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("workspace"))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			return printJSON(cfg)
		},
	}
}

// --- token ---

func tokenCmd() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOptional(viper.GetString("workspace"))
			if err != nil {
				return err
			}
			secret := jwtSecret(cfg)
			if secret == "" {
				return fmt.Errorf("set auth.jwt_secret in glasswork.yml or GLASSWORK_JWT_SECRET")
			}
			ttl := time.Duration(cfg.TokenTTLHoursOrDefault()) * time.Hour
			token, err := server.IssueToken(secret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "local-admin", "token subject")
	return cmd
}

// --- serve ---

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := config.LoadOptional(workspace)
			if err != nil {
				return err
			}
			secret := jwtSecret(cfg)
			if secret == "" {
				return fmt.Errorf("set auth.jwt_secret in glasswork.yml or GLASSWORK_JWT_SECRET")
			}
			assets, err := storage.New(cfg.StorageDir(workspace))
			if err != nil {
				return err
			}
			e := engine.New(conn, cfg)
			handler, err := server.New(server.Config{
				Engine:   e,
				Assets:   assets,
				BasePath: basePath,
				Auth: server.AuthConfig{
					JWTSecret:     secret,
					TokenTTLHours: cfg.TokenTTLHoursOrDefault(),
				},
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Glasswork API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at /docs)\n", addr, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v1", "API base path")
	return cmd
}

// --- helpers ---

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	conn, err := db.Open(db.Config{Workspace: workspace})
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := migrate.Migrate(conn); err != nil {
		return err
	}
	cfg, err := config.LoadOptional(workspace)
	if err != nil {
		return err
	}
	e := engine.New(conn, cfg)
	return fn(ctx, e)
}

func jwtSecret(cfg *config.Config) string {
	if s := os.Getenv("GLASSWORK_JWT_SECRET"); s != "" {
		return s
	}
	return cfg.Auth.JWTSecret
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func printJSONOrValue(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
