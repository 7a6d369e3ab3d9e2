package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KBRRM/create-class/config"
	"github.com/KBRRM/create-class/handlers"
	"github.com/KBRRM/create-class/logging"
	"github.com/KBRRM/create-class/repositories"
	"github.com/KBRRM/create-class/services"
	"github.com/KBRRM/create-class/utils"

	"github.com/DavidGamba/go-getoptions"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type commandLineOptionValues struct {
	EnvFile string
}

func parseCommandLine() *commandLineOptionValues {
	optionValues := &commandLineOptionValues{}
	opt := getoptions.New()

	opt.Bool("help", false, opt.Alias("h", "?"))
	opt.StringVar(&optionValues.EnvFile, "env-file", ".env",
		opt.Alias("e"),
		opt.Description("the path to a .env file with configuration variables"))

	_, err := opt.Parse(os.Args[1:])
	if opt.Called("help") {
		fmt.Fprint(os.Stderr, opt.Help())
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		fmt.Fprint(os.Stderr, opt.Help(getoptions.HelpSynopsis))
		os.Exit(1)
	}

	return optionValues
}

// stores groups the persistence implementations selected by STORE_BACKEND.
type stores struct {
	users         services.UserStore
	categories    services.CategoryStore
	notifications services.NotificationStore
	recipients    services.RecipientLedger
	closers       []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

const (
	connectTimeout = 10 * time.Second
	schemaTimeout  = 30 * time.Second
)

// schemaContext bounds Cassandra table creation separately from the Mongo
// connect deadline.
func schemaContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, schemaTimeout)
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StoreBackend == config.BackendMemory {
		logging.Logger.Warn("Event ID: STORE_MEMORY, Description: Using in-memory stores; data is lost on restart.")
		notifications := repositories.NewMemoryNotificationRepo()
		return &stores{
			users:         repositories.NewMemoryUserRepo(),
			categories:    repositories.NewMemoryCategoryRepo(),
			notifications: notifications,
			recipients:    notifications,
		}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("database connection for MongoDB failed: %w", err)
	}
	s := &stores{closers: []func(){func() { _ = client.Disconnect(context.Background()) }}}

	if err := client.Ping(connectCtx, nil); err != nil {
		s.close()
		return nil, fmt.Errorf("MongoDB connection ping error: %w", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB database %s.", cfg.Mongo.DBName)

	db := client.Database(cfg.Mongo.DBName)
	users := repositories.NewUserRepo(db)
	if err := users.EnsureIndexes(connectCtx); err != nil {
		s.close()
		return nil, err
	}
	s.users = users
	s.categories = repositories.NewCategoryRepo(db)

	if cfg.StoreBackend == config.BackendCassandra {
		cass, err := repositories.NewCassandraNotificationRepo(cfg.Cassandra.Hosts, cfg.Cassandra.Keyspace)
		if err != nil {
			s.close()
			return nil, err
		}
		s.closers = append(s.closers, cass.CloseSession)
		tablesCtx, cancelTables := schemaContext(ctx)
		defer cancelTables()
		if err := cass.CreateTables(tablesCtx); err != nil {
			s.close()
			return nil, err
		}
		s.notifications = cass
		s.recipients = cass
		return s, nil
	}

	recipients := repositories.NewRecipientRepo(db)
	if err := recipients.EnsureIndexes(connectCtx); err != nil {
		s.close()
		return nil, err
	}
	s.notifications = repositories.NewNotificationRepo(db)
	s.recipients = recipients
	return s, nil
}

func main() {
	optionValues := parseCommandLine()

	if err := config.LoadEnvFile(optionValues.EnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger("create-class", cfg.Log.File, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	logging.Logger.Infof("Event ID: SERVICE_START, Description: Starting create-class service with %s backend...", cfg.StoreBackend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_INIT_FAILED, Description: %v", err)
	}
	defer st.close()

	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	authService := services.NewAuthService(st.users, tokens, services.NewUsersBreaker(cfg.UsersBreakerTimeout))
	categoryService := services.NewCategoryService(st.categories, authService)
	notificationService := services.NewNotificationService(st.notifications, st.recipients, authService)

	router := handlers.NewRouter(
		handlers.NewAuthHandler(authService),
		handlers.NewCategoryHandler(categoryService),
		handlers.NewNotificationHandler(notificationService),
		tokens,
		cfg.Server.CORSOrigin,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_ERROR, Description: %v", err)
		}
	}()

	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logging.Logger.Errorf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		return
	}
	logging.Logger.Info("Event ID: SERVER_STOPPED, Description: Server stopped.")
}
