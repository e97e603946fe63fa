package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/naveenspark/moviedash/internal/config"
	"github.com/naveenspark/moviedash/internal/logger"
	"github.com/naveenspark/moviedash/internal/store"
	"github.com/naveenspark/moviedash/internal/tui"
	"github.com/naveenspark/moviedash/pkg/catalog"
	"github.com/naveenspark/moviedash/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// session bundles the API clients and stores one invocation works with.
type session struct {
	cfg       *config.Config
	api       *client.Client
	catalog   *catalog.Client
	auth      *store.AuthStore
	favorites *store.FavoritesStore
	reviews   *store.ReviewsStore
}

// newSession wires the stores the same way for the TUI and the subcommands.
// MOVIEDASH_TOKEN replaces the token file for the lifetime of the process.
func newSession(cfg *config.Config) *session {
	log := logger.Log

	var tokens store.TokenStore = store.FileTokenStore{Path: cfg.TokenPath()}
	if cfg.Token != "" {
		tokens = &store.MemoryTokenStore{Token: cfg.Token}
	}

	api := client.New(strings.TrimRight(cfg.APIURL, "/"), "")
	s := &session{
		cfg: cfg,
		api: api,
		catalog: catalog.New(catalog.Config{
			BaseURL:         cfg.TMDB.BaseURL,
			ReadAccessToken: cfg.TMDB.ReadAccessToken,
			APIKey:          cfg.TMDB.APIKey,
			Language:        cfg.TMDB.Language,
			MaxRetries:      cfg.TMDB.MaxRetries,
			RateLimit:       cfg.TMDB.RateLimit,
			Logger:          log.WithField("component", "catalog"),
		}),
		auth:      store.NewAuthStore(api, tokens, log),
		favorites: store.NewFavoritesStore(api, log),
		reviews:   store.NewReviewsStore(api, log),
	}
	s.auth.Subscribe(s.favorites.SessionChanged)
	s.auth.Subscribe(s.reviews.SessionChanged)
	return s
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(out, "moviedash "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(out)
		return nil
	case "", "login", "register", "logout", "whoami":
	default:
		return fmt.Errorf("unknown command %q (try moviedash help)", cmd)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	closeLog, err := logger.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog() //nolint:errcheck

	s := newSession(cfg)
	logger.Log.WithFields(logrus.Fields{"command": cmd, "version": version, "api_url": cfg.APIURL}).Debug("starting")

	switch cmd {
	case "login":
		return runLogin(ctx, s, bufio.NewReader(in), out)
	case "register":
		return runRegister(ctx, s, bufio.NewReader(in), out)
	case "logout":
		return runLogout(ctx, s, out)
	case "whoami":
		return runWhoami(ctx, s, out)
	}
	return runTUI(ctx, s, out)
}

func runTUI(ctx context.Context, s *session, out io.Writer) error {
	if !s.cfg.TMDB.HasCatalogCredentials() {
		printGreeting(out)
		return nil
	}

	// Browsing works signed out, so a failed restore only costs the session.
	if err := s.auth.Restore(ctx); err != nil {
		logger.Log.WithError(err).Warn("restore session failed")
	}

	app := tui.NewApp(tui.Deps{
		Catalog:      s.catalog,
		Auth:         s.auth,
		Favorites:    s.favorites,
		Reviews:      s.reviews,
		ImageBaseURL: s.cfg.TMDB.ImageBaseURL,
	}, version)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// prompt writes label and reads one line from r.
func prompt(r *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runLogin(ctx context.Context, s *session, r *bufio.Reader, out io.Writer) error {
	email, err := prompt(r, out, "Email")
	if err != nil {
		return err
	}
	password, err := prompt(r, out, "Password")
	if err != nil {
		return err
	}
	if err := s.auth.Login(ctx, email, password); err != nil {
		return errors.New(store.Message(err, "login failed"))
	}
	sess := s.auth.Session()
	fmt.Fprintf(out, "Logged in as %s\n", sess.User.Username)
	return nil
}

func runRegister(ctx context.Context, s *session, r *bufio.Reader, out io.Writer) error {
	username, err := prompt(r, out, "Username")
	if err != nil {
		return err
	}
	email, err := prompt(r, out, "Email")
	if err != nil {
		return err
	}
	password, err := prompt(r, out, "Password")
	if err != nil {
		return err
	}
	if err := s.auth.Register(ctx, username, email, password); err != nil {
		return errors.New(store.Message(err, "registration failed"))
	}
	fmt.Fprintf(out, "Welcome, %s. You are logged in.\n", s.auth.Session().User.Username)
	return nil
}

func runLogout(ctx context.Context, s *session, out io.Writer) error {
	if err := s.auth.Restore(ctx); err != nil {
		logger.Log.WithError(err).Warn("restore before logout failed")
	}
	// A token Restore could not verify still gets a backend logout.
	wasIn := s.auth.HasToken()
	if err := s.auth.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if !wasIn {
		fmt.Fprintln(out, "Already logged out.")
		return nil
	}
	fmt.Fprintln(out, "Logged out.")
	return nil
}

func runWhoami(ctx context.Context, s *session, out io.Writer) error {
	if err := s.auth.Restore(ctx); err != nil {
		return errors.New(store.Message(err, "could not reach the server"))
	}
	sess := s.auth.Session()
	if sess == nil {
		fmt.Fprintln(out, "Not logged in. Run: moviedash login")
		return nil
	}
	line := sess.User.Username
	if sess.User.Email != "" {
		line += " <" + sess.User.Email + ">"
	}
	fmt.Fprintln(out, line)
	return nil
}
