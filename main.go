package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/metabo-ui/metabo-ui/config"
	"github.com/metabo-ui/metabo-ui/database"
	"github.com/metabo-ui/metabo-ui/database/hmdb"
	"github.com/metabo-ui/metabo-ui/database/model"
	"github.com/metabo-ui/metabo-ui/logger"
	"github.com/metabo-ui/metabo-ui/util/random"
	"github.com/metabo-ui/metabo-ui/web"
	"github.com/metabo-ui/metabo-ui/web/service"

	"github.com/spf13/cobra"
)

// cliActor is recorded in audit lines for changes made from the command line.
var cliActor = service.Actor{ID: "cli", IP: "-"}

func initLogger() error {
	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		return err
	}
	logger.InitLogger(level)
	return nil
}

// runWebServer serves until SIGINT or SIGTERM. Any startup failure is
// returned so the process exits non-zero.
func runWebServer() error {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("failed to read .env: %w", err)
	}
	if err := initLogger(); err != nil {
		return err
	}
	defer logger.CloseLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := database.InitDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warning("close database err:", err)
		}
	}()

	server := web.NewServer(cfg, store)
	if err := server.AdminService().EnsureGodUser(ctx, cfg.Admin.Password); err != nil {
		return fmt.Errorf("failed to set up admin user: %w", err)
	}

	if err := server.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal:", sig)

	if err := server.Stop(); err != nil {
		logger.Warning("stop server err:", err)
	}
	return nil
}

// openStore opens the configured database for an offline command.
func openStore(ctx context.Context) model.Store {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatal("failed to read .env:", err)
	}
	if err := initLogger(); err != nil {
		log.Fatal(err)
	}

	cfg, err := config.LoadDatabase()
	if err != nil {
		log.Fatal(err)
	}
	store, err := database.InitDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err)
	}
	return store
}

func newAdminService(store model.Store) *service.UserAdminService {
	return service.NewUserAdminService(store.Users(), &service.AuditService{}, os.Getenv("ADMIN_EMAIL"))
}

// addUser creates a user; an empty password is replaced by a generated
// one that is printed once.
func addUser(email, password, role string) error {
	generated := password == ""
	if generated {
		var err error
		if password, err = random.Password(random.DefaultPasswordLength); err != nil {
			return err
		}
	}

	ctx := context.Background()
	store := openStore(ctx)
	defer store.Close(ctx)

	user, err := newAdminService(store).AddUser(ctx, cliActor, email, password, role)
	if err != nil {
		return err
	}
	fmt.Printf("user %s added with role %s\n", user.Email, user.Role)
	if generated {
		fmt.Println("generated password:", password)
	}
	return nil
}

func resetPassword(email, password string) error {
	ctx := context.Background()
	store := openStore(ctx)
	defer store.Close(ctx)

	if err := newAdminService(store).ResetPassword(ctx, cliActor, email, password); err != nil {
		return err
	}
	fmt.Printf("password of %s updated\n", email)
	return nil
}

// importMetabolites upserts every record of an HMDB export. Records
// without an accession are skipped and counted.
func importMetabolites(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	ctx := context.Background()
	store := openStore(ctx)
	defer store.Close(ctx)

	metabolites := store.Metabolites()
	imported, skipped := 0, 0
	err = hmdb.Decode(file, func(rec *hmdb.Record) error {
		m, err := rec.ToMetabolite()
		if err != nil {
			skipped++
			logger.Warning("skip record:", err)
			return nil
		}
		if err := metabolites.Upsert(ctx, m); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", m.ID, err)
		}
		imported++
		if imported%1000 == 0 {
			logger.Infof("imported %d metabolites", imported)
		}
		return nil
	})
	fmt.Printf("imported %d metabolites, skipped %d\n", imported, skipped)
	return err
}

func main() {
	var rootCmd = &cobra.Command{
		Use:          "metabo-ui",
		Short:        "Metabolite search web application",
		SilenceUsage: true,
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWebServer()
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetName(), config.GetVersion())
		},
	}

	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var userAddCmd = &cobra.Command{
		Use:   "add",
		Short: "Add a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")
			return addUser(email, password, role)
		},
	}

	userAddCmd.Flags().String("email", "", "login email of the user")
	userAddCmd.Flags().String("password", "", "initial password, generated when empty")
	userAddCmd.Flags().String("role", model.RoleUser, "role of the user")
	_ = userAddCmd.MarkFlagRequired("email")

	var userPasswdCmd = &cobra.Command{
		Use:   "passwd",
		Short: "Reset the password of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			return resetPassword(email, password)
		},
	}

	userPasswdCmd.Flags().String("email", "", "login email of the user")
	userPasswdCmd.Flags().String("password", "", "new password")
	_ = userPasswdCmd.MarkFlagRequired("email")
	_ = userPasswdCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd, userPasswdCmd)

	var metaboliteCmd = &cobra.Command{
		Use:   "metabolite",
		Short: "Manage the metabolite collection",
	}

	var importCmd = &cobra.Command{
		Use:   "import",
		Short: "Import an HMDB JSON export",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			return importMetabolites(path)
		},
	}

	importCmd.Flags().String("file", "", "path of the HMDB JSON export")
	_ = importCmd.MarkFlagRequired("file")

	metaboliteCmd.AddCommand(importCmd)

	rootCmd.AddCommand(runCmd, userCmd, metaboliteCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
