package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"evscout/internal/api"
	"evscout/internal/auth"
	"evscout/internal/calendar"
	"evscout/internal/capture"
	"evscout/internal/config"
	"evscout/internal/datefmt"
	"evscout/internal/filter"
	"evscout/internal/geo"
	"evscout/internal/ics"
	appLog "evscout/internal/log"
	"evscout/internal/model"
	"evscout/internal/web"
)

const version = "0.1.0"

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "evscout",
		Usage:   "Discover, filter and track events from the command line.",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: config.DefaultPath(), Usage: "Path to config file"},
		},
		Commands: []*cli.Command{
			loginCommand(),
			registerCommand(),
			logoutCommand(),
			whoamiCommand(),
			eventsCommand(),
			showCommand(),
			attendCommand(),
			unattendCommand(),
			nearbyCommand(),
			categoriesCommand(),
			calendarCommand(),
			bookmarksCommand(),
			profileCommand(),
			exportCommand(),
			serveCommand(),
			snapshotCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		appLog.Error("command failed", err)
		os.Exit(1)
	}
}

// appEnv bundles everything a command needs after config loading.
type appEnv struct {
	cfg     *config.Config
	store   *auth.Store
	client  *api.Client
	dataDir string
}

func setup(c *cli.Context) (*appEnv, error) {
	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	appLog.SetLevel(cfg.LogLevel)

	dataDir := cfg.ResolveDataDir(path)
	store := auth.NewStore(dataDir)
	client := api.NewClient(cfg, store, filepath.Join(dataDir, "http-cache"))

	return &appEnv{cfg: cfg, store: store, client: client, dataDir: dataDir}, nil
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in and store the session token.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "Account email (prompted when omitted)"},
			&cli.StringFlag{Name: "password", Usage: "Account password (prompted when omitted)"},
		},
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}

			email := c.String("email")
			if email == "" {
				email = prompt("Email: ")
			}
			password := c.String("password")
			if password == "" {
				password = prompt("Password: ")
			}

			resp, err := env.client.Login(c.Context, api.Credentials{Email: email, Password: password})
			if err != nil {
				if api.IsUnauthorized(err) {
					return fmt.Errorf("invalid email or password")
				}
				return err
			}
			if err := env.store.Save(auth.Session{Token: resp.Token, User: resp.User}); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			fmt.Printf("Logged in as %s\n", resp.User.Email)
			if exp, ok := auth.TokenExpiry(resp.Token); ok {
				appLog.Debug("session token stored", "expires", exp.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create a new account and log in.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "name", Usage: "Display name"},
		},
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}

			password := prompt("Password: ")
			if password == "" {
				return fmt.Errorf("password must not be empty")
			}

			resp, err := env.client.Register(c.Context, api.Registration{
				Username: c.String("username"),
				Email:    c.String("email"),
				Password: password,
				Name:     c.String("name"),
			})
			if err != nil {
				return err
			}
			if err := env.store.Save(auth.Session{Token: resp.Token, User: resp.User}); err != nil {
				return fmt.Errorf("save session: %w", err)
			}

			fmt.Printf("Account created; logged in as %s\n", resp.User.Email)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Discard the stored session token.",
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}
			if err := env.store.Clear(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the logged-in account and verify the token server-side.",
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}
			sess, err := env.store.Load()
			if err != nil {
				return err
			}

			user, ok, err := env.client.ValidateToken(c.Context)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("stored session for %s is no longer valid; run login again", sess.User.Email)
			}

			fmt.Printf("Logged in as %s (%s)\n", user.Username, user.Email)
			if exp, hasExp := auth.TokenExpiry(sess.Token); hasExp {
				fmt.Printf("Session valid until %s\n", exp.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "List events, optionally filtered by category and distance.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Usage: "Category id to filter on"},
			&cli.StringFlag{Name: "near", Usage: "Filter around a position, as \"lat,lng\""},
			&cli.Float64Flag{Name: "radius", Usage: "Distance filter radius in km (with --near)"},
			&cli.StringFlag{Name: "from", Usage: "Only events starting on/after this date (yyyy-MM-dd)"},
			&cli.StringFlag{Name: "to", Usage: "Only events starting on/before this date (yyyy-MM-dd)"},
			&cli.IntFlag{Name: "limit", Usage: "Maximum number of events to fetch"},
		},
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}

			q := api.EventQuery{StartDate: c.String("from"), EndDate: c.String("to"), Limit: c.Int("limit")}
			events, err := env.client.ListEvents(c.Context, q)
			if err != nil {
				return err
			}

			state := filter.State{RadiusKm: env.cfg.DefaultRadiusKm}
			if env.cfg.DefaultCategory != "" {
				cat := env.cfg.DefaultCategory
				state.CategoryID = &cat
			}
			if cat := c.String("category"); cat != "" {
				state.CategoryID = &cat
			}
			if near := c.String("near"); near != "" {
				state.LocationEnabled = true
				state.UserCoordinate = parseCoordinate(near)
			}
			if c.IsSet("radius") {
				state.RadiusKm = c.Float64("radius")
			}
			if err := state.Validate(); err != nil {
				return err
			}

			res := filter.Apply(events, state)
			if res.LocationUnavailable {
				fmt.Fprintln(os.Stderr, "warning: position missing or invalid; distance filter skipped")
			}

			printEvents(res.Events, state.UserCoordinate)
			return nil
		},
	}
}

// parseCoordinate parses "lat,lng". A malformed value returns nil so the
// distance filter fails open with its warning instead of erroring out.
func parseCoordinate(s string) *model.Coordinate {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return nil
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errLat != nil || errLng != nil {
		return nil
	}
	return &model.Coordinate{Latitude: lat, Longitude: lng}
}

func printEvents(events []model.Event, from *model.Coordinate) {
	if len(events) == 0 {
		fmt.Println("No events found.")
		return
	}
	for _, ev := range events {
		when := datefmt.RelativeDateLabel(ev.StartDate)
		if t := datefmt.FormatTime(ev.StartDate); t != "" {
			when += " " + t
		}
		fmt.Printf("[%s] %-32s %-22s", ev.ID.String(), ev.Title, when)
		if ev.Location != "" {
			fmt.Printf(" %s", ev.Location)
		}
		if ev.CategoryName != "" {
			fmt.Printf(" (%s)", ev.CategoryName)
		}
		if from != nil {
			if km, ok := distanceFrom(&ev, from); ok {
				fmt.Printf(" %.1f km away", km)
			}
		}
		fmt.Println()
	}
}

func distanceFrom(ev *model.Event, from *model.Coordinate) (float64, bool) {
	return geo.Distance(ev.Coordinate(), from)
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one event in detail.",
		ArgsUsage: "<event-id>",
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("event id required")
			}

			ev, err := env.client.GetEvent(c.Context, id)
			if err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("no event with id %s", id)
				}
				return err
			}

			fmt.Println(ev.Title)
			fmt.Println(datefmt.FormatDateRange(ev.StartDate, ev.EndDate))
			if ev.Location != "" {
				fmt.Printf("Venue:    %s\n", ev.Location)
			}
			if ev.CategoryName != "" {
				fmt.Printf("Category: %s\n", ev.CategoryName)
			}
			if ev.Price != nil {
				if *ev.Price == 0 {
					fmt.Println("Price:    free")
				} else {
					fmt.Printf("Price:    %.2f\n", *ev.Price)
				}
			}
			if ev.Capacity != nil {
				fmt.Printf("Capacity: %d/%d registered\n", ev.RegisteredCount, *ev.Capacity)
			}

			switch {
			case datefmt.IsHappeningNow(ev.StartDate, ev.EndDate):
				fmt.Println("Status:   happening now")
			case datefmt.HasEventEnded(ev.EndDate):
				fmt.Println("Status:   ended")
			default:
				if days, ok := datefmt.DaysRemaining(ev.StartDate); ok {
					switch days {
					case 0:
						fmt.Println("Status:   starts today")
					case 1:
						fmt.Println("Status:   starts tomorrow")
					default:
						fmt.Printf("Status:   starts in %d days\n", days)
					}
				}
			}

			if ev.Description != "" {
				fmt.Println()
				fmt.Println(ev.Description)
			}
			return nil
		},
	}
}

func attendCommand() *cli.Command {
	return &cli.Command{
		Name:      "attend",
		Usage:     "Register for an event.",
		ArgsUsage: "<event-id>",
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("event id required")
			}
			if err := requireSession(env.store); err != nil {
				return err
			}
			if err := env.client.RegisterForEvent(c.Context, id); err != nil {
				return err
			}
			fmt.Println("Registered.")
			return nil
		},
	}
}

func unattendCommand() *cli.Command {
	return &cli.Command{
		Name:      "unattend",
		Usage:     "Cancel a registration.",
		ArgsUsage: "<event-id>",
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("event id required")
			}
			if err := requireSession(env.store); err != nil {
				return err
			}
			if err := env.client.CancelRegistration(c.Context, id); err != nil {
				return err
			}
			fmt.Println("Registration cancelled.")
			return nil
		},
	}
}

func requireSession(store *auth.Store) error {
	sess, err := store.Load()
	if err != nil {
		return err
	}
	if sess.Expired(time.Now()) {
		return fmt.Errorf("session expired; run login again")
	}
	return nil
}

func nearbyCommand() *cli.Command {
	return &cli.Command{
		Name:  "nearby",
		Usage: "Ask the server for events around a position.",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "lat", Required: true},
			&cli.Float64Flag{Name: "lng", Required: true},
			&cli.Float64Flag{Name: "radius", Usage: "Radius in km (defaults to the configured radius)"},
		},
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}
			radius := env.cfg.DefaultRadiusKm
			if c.IsSet("radius") {
				radius = c.Float64("radius")
			}
			at := model.Coordinate{Latitude: c.Float64("lat"), Longitude: c.Float64("lng")}

			events, err := env.client.NearbyEvents(c.Context, at, radius)
			if err != nil {
				return err
			}
			printEvents(events, &at)
			return nil
		},
	}
}

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "List event categories.",
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}
			categories, err := env.client.Categories(c.Context)
			if err != nil {
				return err
			}
			for _, cat := range categories {
				fmt.Printf("[%s] %s\n", cat.ID.String(), cat.Name)
			}
			return nil
		},
	}
}

func calendarCommand() *cli.Command {
	return &cli.Command{
		Name:  "calendar",
		Usage: "Show a month with event markers and the selected day's events.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "month", Usage: "Month to show (yyyy-MM, default current)"},
			&cli.StringFlag{Name: "day", Usage: "Selected day (yyyy-MM-dd, default today)"},
		},
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}
			loc := env.cfg.Location()
			now := time.Now().In(loc)

			month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
			if v := c.String("month"); v != "" {
				month, err = time.ParseInLocation("2006-01", v, loc)
				if err != nil {
					return fmt.Errorf("invalid month %q: %w", v, err)
				}
			}
			selected := now.Format(datefmt.LayoutDay)
			if v := c.String("day"); v != "" {
				if _, err := time.ParseInLocation(datefmt.LayoutDay, v, loc); err != nil {
					return fmt.Errorf("invalid day %q: %w", v, err)
				}
				selected = v
			}

			start := month.Format(datefmt.LayoutDay)
			end := month.AddDate(0, 1, 0).Format(datefmt.LayoutDay)
			events, err := env.client.EventsByDateRange(c.Context, start, end)
			if err != nil {
				return err
			}

			markings := calendar.BuildMarkings(events, selected, loc)
			printMonth(month, markings, env.cfg.WeekStart)

			fmt.Println()
			fmt.Println(datefmt.FormatDate(selected, datefmt.LayoutLongDate))
			day := calendar.EventsOnDay(events, selected, loc)
			if len(day) == 0 {
				fmt.Println("  no events")
			}
			for _, ev := range day {
				fmt.Printf("  %s  %s", datefmt.FormatTime(ev.StartDate), ev.Title)
				if ev.Location != "" {
					fmt.Printf("  (%s)", ev.Location)
				}
				fmt.Println()
			}
			return nil
		},
	}
}

// printMonth renders an ASCII month grid. Days with events carry a dot,
// the selected day is bracketed.
func printMonth(month time.Time, markings map[string]calendar.Marking, weekStart string) {
	fmt.Println(month.Format("January 2006"))

	names := []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}
	offset := int(month.Weekday())
	if weekStart == "monday" {
		names = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}
		offset = (offset + 6) % 7
	}
	fmt.Println(strings.Join(names, "   "))

	cur := month
	next := month.AddDate(0, 1, 0)
	col := 0
	for ; col < offset; col++ {
		fmt.Print("     ")
	}
	for cur.Before(next) {
		m := markings[cur.Format(datefmt.LayoutDay)]
		cell := fmt.Sprintf(" %2d ", cur.Day())
		if m.Selected {
			cell = fmt.Sprintf("[%2d]", cur.Day())
		}
		if m.HasEvents {
			cell += "·"
		} else {
			cell += " "
		}
		fmt.Print(cell)
		col++
		if col == 7 {
			fmt.Println()
			col = 0
		}
		cur = cur.AddDate(0, 0, 1)
	}
	if col != 0 {
		fmt.Println()
	}
}

func bookmarksCommand() *cli.Command {
	return &cli.Command{
		Name:  "bookmarks",
		Usage: "Manage saved events.",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List bookmarked events.",
				Action: func(c *cli.Context) error {
					env, err := setup(c)
					if err != nil {
						return err
					}
					if err := requireSession(env.store); err != nil {
						return err
					}
					bookmarks, err := env.client.Bookmarks(c.Context)
					if err != nil {
						return err
					}
					if len(bookmarks) == 0 {
						fmt.Println("No bookmarks.")
						return nil
					}
					var events []model.Event
					for _, b := range bookmarks {
						if b.Event != nil {
							events = append(events, *b.Event)
						}
					}
					sort.SliceStable(events, func(i, j int) bool { return events[i].StartDate < events[j].StartDate })
					printEvents(events, nil)
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "Bookmark an event.",
				ArgsUsage: "<event-id>",
				Action: func(c *cli.Context) error {
					env, err := setup(c)
					if err != nil {
						return err
					}
					id := c.Args().First()
					if id == "" {
						return fmt.Errorf("event id required")
					}
					if err := requireSession(env.store); err != nil {
						return err
					}
					if saved, err := env.client.IsBookmarked(c.Context, id); err == nil && saved {
						fmt.Println("Already bookmarked.")
						return nil
					}
					if err := env.client.AddBookmark(c.Context, id); err != nil {
						return err
					}
					fmt.Println("Bookmarked.")
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a bookmark.",
				ArgsUsage: "<event-id>",
				Action: func(c *cli.Context) error {
					env, err := setup(c)
					if err != nil {
						return err
					}
					id := c.Args().First()
					if id == "" {
						return fmt.Errorf("event id required")
					}
					if err := requireSession(env.store); err != nil {
						return err
					}
					if err := env.client.RemoveBookmark(c.Context, id); err != nil {
						return err
					}
					fmt.Println("Bookmark removed.")
					return nil
				},
			},
		},
	}
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or update the account profile.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Usage: "New username"},
			&cli.StringFlag{Name: "email", Usage: "New email"},
			&cli.StringFlag{Name: "name", Usage: "New display name"},
			&cli.BoolFlag{Name: "change-password", Usage: "Prompt for a password change"},
		},
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}
			if err := requireSession(env.store); err != nil {
				return err
			}

			if c.Bool("change-password") {
				current := prompt("Current password: ")
				next := prompt("New password: ")
				if err := env.client.ChangePassword(c.Context, api.PasswordChange{CurrentPassword: current, NewPassword: next}); err != nil {
					return err
				}
				fmt.Println("Password changed.")
				return nil
			}

			if c.IsSet("username") || c.IsSet("email") || c.IsSet("name") {
				user, err := env.client.UpdateProfile(c.Context, api.ProfileUpdate{
					Username: c.String("username"),
					Email:    c.String("email"),
					Name:     c.String("name"),
				})
				if err != nil {
					return err
				}
				// Keep the stored session's profile in sync.
				if sess, lerr := env.store.Load(); lerr == nil {
					sess.User = *user
					_ = env.store.Save(*sess)
				}
				fmt.Println("Profile updated.")
				return nil
			}

			user, err := env.client.Profile(c.Context)
			if err != nil {
				return err
			}
			fmt.Printf("Username: %s\nEmail:    %s\n", user.Username, user.Email)
			if user.Name != "" {
				fmt.Printf("Name:     %s\n", user.Name)
			}

			registered, err := env.client.RegisteredEvents(c.Context)
			if err != nil {
				return err
			}
			if len(registered) > 0 {
				fmt.Println("\nRegistered events:")
				printEvents(registered, nil)
			}
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export events as an iCalendar file.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "evscout.ics", Usage: "Output path (\"-\" for stdout)"},
			&cli.BoolFlag{Name: "bookmarks", Usage: "Export bookmarked events instead of the full listing"},
		},
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}

			var events []model.Event
			if c.Bool("bookmarks") {
				if err := requireSession(env.store); err != nil {
					return err
				}
				bookmarks, err := env.client.Bookmarks(c.Context)
				if err != nil {
					return err
				}
				for _, b := range bookmarks {
					if b.Event != nil {
						events = append(events, *b.Event)
					}
				}
			} else {
				events, err = env.client.ListEvents(c.Context, api.EventQuery{})
				if err != nil {
					return err
				}
			}

			payload := ics.Export(events, "evscout")
			out := c.String("out")
			if out == "-" {
				fmt.Print(payload)
				return nil
			}
			if err := os.WriteFile(out, []byte(payload), 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %d events to %s\n", len(events), out)
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local companion web server with periodic refresh.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: "HTTP listen address (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}
			if v := c.String("listen"); v != "" {
				env.cfg.Listen = v
			}

			previewPath := filepath.Join(env.dataDir, "preview.png")
			server := web.NewServer(env.cfg, env.client, previewPath)

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			// Background refresh keeps the listing warm between UI reads.
			cr := cron.New()
			if _, err := cr.AddFunc(env.cfg.RefreshCron, func() {
				if err := server.Refresh(ctx); err != nil {
					appLog.Error("scheduled refresh failed", err)
				}
			}); err != nil {
				return fmt.Errorf("invalid refresh schedule %q: %w", env.cfg.RefreshCron, err)
			}
			cr.Start()
			defer cr.Stop()

			httpServer := &http.Server{Addr: env.cfg.Listen, Handler: server.Handler()}
			errCh := make(chan error, 1)
			go func() {
				appLog.Info("starting HTTP server", "listen", "http://"+env.cfg.Listen, "refresh", env.cfg.RefreshCron)
				errCh <- httpServer.ListenAndServe()
			}()

			// Warm the cache once at startup so the first page load is fast.
			if err := server.Refresh(ctx); err != nil {
				appLog.Warn("initial refresh failed", "error", err.Error())
			}

			select {
			case sig := <-sigCh:
				appLog.Info("signal received, shutting down", "signal", sig.String())
			case err := <-errCh:
				if err != nil && err != http.ErrServerClosed {
					return err
				}
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
}

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Capture the /calendar page as a PNG via headless Chromium.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "Page to capture (defaults to the configured server's /calendar)"},
			&cli.StringFlag{Name: "out", Usage: "Output path (defaults to preview.png in the data dir)"},
			&cli.IntFlag{Name: "width", Usage: "Viewport width in px"},
			&cli.IntFlag{Name: "height", Usage: "Viewport height in px"},
		},
		Action: func(c *cli.Context) error {
			env, err := setup(c)
			if err != nil {
				return err
			}

			url := c.String("url")
			if url == "" {
				url = "http://" + env.cfg.Listen + "/calendar"
			}
			out := c.String("out")
			if out == "" {
				out = filepath.Join(env.dataDir, "preview.png")
			}

			opts := capture.Options{
				URL:        url,
				OutputPath: out,
				Width:      c.Int("width"),
				Height:     c.Int("height"),
			}
			if err := capture.SnapshotPNG(c.Context, opts); err != nil {
				return err
			}
			fmt.Printf("Snapshot written to %s\n", out)
			return nil
		},
	}
}
