// Command postline is a terminal client for the posting service. Sessions
// persist across invocations through the configured credential store, and
// every API call travels through the token-attaching interceptor.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"postline/internal/auth"
	"postline/internal/config"
	"postline/internal/feed"
	"postline/internal/models"
	"postline/internal/notify"
	"postline/internal/observability"
	"postline/internal/storage"
	"postline/internal/transport"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := buildApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, models.UserMessage(err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  postline login <username>              - Log in and store the session")
	fmt.Println("  postline logout                        - Clear the stored session")
	fmt.Println("  postline whoami                        - Show the current identity")
	fmt.Println("  postline feed [author]                 - List posts, optionally by author")
	fmt.Println("  postline trending                      - List trending posts")
	fmt.Println("  postline post <title> <content>        - Create a post")
	fmt.Println("  postline edit <id> <title> <content>   - Update one of your posts")
	fmt.Println("  postline delete <id>                   - Delete one of your posts")
	fmt.Println("  postline comment <id> <text>           - Comment on a post")
	fmt.Println("  postline like <id> | dislike <id>      - Vote on a post")
	fmt.Println("  postline users                         - List users")
	fmt.Println("  postline dashboard                     - Show site-wide counts")
}

// cliApp wires the session manager, transport, and feed engine together for
// one command invocation.
type cliApp struct {
	cfg     *config.Config
	log     *observability.Logger
	session *auth.Manager
	authn   *auth.Authenticator
	engine  *feed.Engine
	data    *transport.Client
}

func buildApp(cfg *config.Config) (*cliApp, error) {
	logger := observability.NewTextLogger()

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	session := auth.NewManager(store, logger, func() {
		fmt.Fprintln(os.Stderr, "Session ended. Run 'postline login <username>' to sign in.")
	})

	interceptor := transport.NewAuthInterceptor(session, nil, logger)
	data := transport.NewClient(cfg.APIBaseURL, interceptor, logger)

	// Login bypasses the interceptor so a dead session cannot block signing in.
	loginClient := transport.NewClient(cfg.APIBaseURL, nil, logger)
	authn := auth.NewAuthenticator(loginClient, cfg.LoginPath)

	api := feed.NewAPI(data, feed.Paths{
		Posts:    cfg.PostsPath,
		Trending: cfg.TrendingPath,
		Comments: cfg.CommentsPath,
		Votes:    cfg.VotesPath,
	})
	notifier := notify.NewLogNotifier(logger)
	engine := feed.NewEngine(api, session, notifier, confirmPrompt, logger)

	return &cliApp{
		cfg:     cfg,
		log:     logger,
		session: session,
		authn:   authn,
		engine:  engine,
		data:    data,
	}, nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.CredentialStore {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "redis":
		return storage.NewRedisStore(cfg.RedisURL, "postline")
	default:
		path := cfg.CredentialFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(home, ".postline", "session.json")
		}
		return storage.NewFileStore(path)
	}
}

// confirmPrompt asks on the terminal before destructive operations.
func confirmPrompt(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (a *cliApp) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "logout":
		a.session.Logout()
		return nil
	case "whoami":
		return a.whoami()
	case "feed":
		author := ""
		if len(args) > 0 {
			author = args[0]
		}
		a.engine.LoadPosts(ctx, author)
		a.printPosts(a.engine.Posts())
		return nil
	case "trending":
		a.engine.LoadTrendingPosts(ctx)
		a.printPosts(a.engine.TrendingPosts())
		return nil
	case "post":
		if len(args) < 2 {
			return fmt.Errorf("usage: postline post <title> <content>")
		}
		a.engine.OpenComposer()
		a.engine.SetPostForm(args[0], strings.Join(args[1:], " "))
		return a.engine.SavePost(ctx)
	case "edit":
		return a.edit(ctx, args)
	case "delete":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		a.engine.LoadPosts(ctx, "")
		return a.engine.DeletePost(ctx, id)
	case "comment":
		return a.comment(ctx, args)
	case "like", "dislike":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		a.engine.LoadPosts(ctx, "")
		return a.engine.Vote(ctx, id, command == "like")
	case "users":
		return a.users(ctx)
	case "dashboard":
		return a.dashboard(ctx)
	default:
		usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *cliApp) login(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: postline login <username>")
	}
	username := args[0]

	fmt.Print("Password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return err
	}

	token, err := a.authn.Login(ctx, username, strings.TrimSpace(password))
	if err != nil {
		return err
	}

	a.session.SetCredential(token)
	fmt.Printf("Signed in as %s (%s)\n", a.session.DisplayName(), a.session.Role())
	return nil
}

func (a *cliApp) whoami() error {
	if a.session.Token() == "" {
		fmt.Println("Not signed in")
		return nil
	}
	fmt.Printf("%s (role: %s, id: %s)\n", a.session.DisplayName(), a.session.Role(), a.session.UID())
	return nil
}

func (a *cliApp) edit(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: postline edit <id> <title> <content>")
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid post ID %q", args[0])
	}

	a.engine.LoadPosts(ctx, "")
	a.engine.EnterEditMode(uint(id))
	if !a.engine.Editing() {
		return fmt.Errorf("post %d not found", id)
	}
	a.engine.SetPostForm(args[1], strings.Join(args[2:], " "))
	return a.engine.UpdatePost(ctx)
}

func (a *cliApp) comment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: postline comment <id> <text>")
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid post ID %q", args[0])
	}

	a.engine.LoadPosts(ctx, "")
	if err := a.engine.SetCommentDraft(uint(id), strings.Join(args[1:], " ")); err != nil {
		return err
	}
	return a.engine.AddComment(ctx, uint(id))
}

func (a *cliApp) users(ctx context.Context) error {
	users, err := transport.GetData[models.User](ctx, a.data, a.cfg.UsersPath, "")
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Printf("%4d  %-20s %s\n", u.ID, u.Username, u.Role)
	}
	return nil
}

func (a *cliApp) dashboard(ctx context.Context) error {
	dash, err := transport.GetDataObject[models.Dashboard](ctx, a.data, a.cfg.DashboardPath, "")
	if err != nil {
		return err
	}
	fmt.Printf("Users: %d  Posts: %d  Comments: %d  Votes: %d\n",
		dash.UserCount, dash.PostCount, dash.CommentCount, dash.VoteCount)
	return nil
}

func (a *cliApp) printPosts(posts []models.Post) {
	if len(posts) == 0 {
		fmt.Println("No posts")
		return
	}
	now := time.Now()
	for _, p := range posts {
		fmt.Printf("#%d  %s\n", p.ID, p.Title)
		fmt.Printf("    by %s (%s), %s  |  %d likes, %d dislikes, %d comments\n",
			p.AuthorName, p.AuthorRole, feed.RelativeAge(p.CreatedAt, now),
			p.LikeCount(), p.DislikeCount(), len(p.Comments))
		fmt.Printf("    %s\n", p.Content)
		for _, c := range p.Comments {
			fmt.Printf("      %s: %s\n", c.AuthorName, c.Content)
		}
	}
}

func parseID(args []string) (uint, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("post ID required")
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid post ID %q", args[0])
	}
	return uint(id), nil
}
