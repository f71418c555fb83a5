package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"advocatr/backend/config"
	"advocatr/backend/importer"
	"advocatr/backend/models"
	"advocatr/backend/routes"
	"advocatr/backend/services"
	"advocatr/backend/utils"

	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	app := &cli.App{
		Name:   "advocatr",
		Usage:  "Advocatr e-learning backend",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database schema",
				Action: migrate,
			},
			{
				Name:   "seed",
				Usage:  "insert sample exercises when the catalogue is empty",
				Action: seed,
			},
			{
				Name:  "create-admin",
				Usage: "create an admin account or reset an existing one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Value: "admin"},
					&cli.StringFlag{Name: "email", Value: "admin@advocatr.com"},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ADMIN_PASSWORD"}},
				},
				Action: createAdmin,
			},
			{
				Name:      "grant-admin",
				Usage:     "give an existing user the admin role",
				ArgsUsage: "<username>",
				Action:    grantAdmin,
			},
			{
				Name:      "import-exercises",
				Usage:     "load exercises from an .xlsx or .csv file",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sheet", Usage: "sheet name, defaults to the first sheet"},
					&cli.IntFlag{Name: "start-row", Value: 2, Usage: "first data row (1-based)"},
				},
				Action: importExercises,
			},
			{
				Name:   "sweep-tokens",
				Usage:  "delete expired reset tokens and sessions",
				Action: sweepTokens,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads configuration, installs the logger and opens the database.
func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	utils.InitLogger(utils.LoggerConfigFor(cfg.Env))

	db, err := utils.InitDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}
	return cfg, db, nil
}

func serve(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	defer utils.CloseDB(db)

	svc := services.New(db, cfg, services.NewMailer(cfg))
	if cfg.TokenSweepInterval > 0 {
		if err := svc.Sweeper.Start(cfg.TokenSweepInterval); err != nil {
			return fmt.Errorf("start token sweeper: %w", err)
		}
		defer svc.Sweeper.Stop()
	}

	app := routes.NewApp(svc, cfg, slog.Default())

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.ServerPort, "env", cfg.Env)
		errCh <- app.Listen(":" + cfg.ServerPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		slog.Info("shutting down", "signal", sig.String())
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func migrate(c *cli.Context) error {
	_, db, err := setup()
	if err != nil {
		return err
	}
	defer utils.CloseDB(db)

	slog.Info("database schema is up to date")
	return nil
}

var sampleExercises = []services.ExerciseInput{
	{
		Order:                 1,
		Title:                 "Introduction to Public Speaking",
		Description:           "Learn the basics of public speaking and how to structure a speech.",
		DemoVideoURL:          "https://example.com/intro-demo",
		ProfessionalAnswerURL: "https://example.com/intro-pro",
	},
	{
		Order:                 2,
		Title:                 "Body Language and Posture",
		Description:           "Master the art of body language and professional posture.",
		DemoVideoURL:          "https://example.com/body-language-demo",
		ProfessionalAnswerURL: "https://example.com/body-language-pro",
	},
	{
		Order:                 3,
		Title:                 "Voice Projection Techniques",
		Description:           "Learn techniques to improve your voice projection and clarity.",
		DemoVideoURL:          "https://example.com/voice-demo",
		ProfessionalAnswerURL: "https://example.com/voice-pro",
	},
}

func seed(c *cli.Context) error {
	_, db, err := setup()
	if err != nil {
		return err
	}
	defer utils.CloseDB(db)

	exercises := services.NewExerciseService(db, utils.NewValidator())
	n, err := exercises.Count(c.Context)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("exercises already present, skipping seed", "count", n)
		return nil
	}

	for _, in := range sampleExercises {
		if _, err := exercises.Create(c.Context, in); err != nil {
			return fmt.Errorf("seed exercise %d: %w", in.Order, err)
		}
	}
	slog.Info("sample exercises created", "count", len(sampleExercises))
	return nil
}

func createAdmin(c *cli.Context) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	defer utils.CloseDB(db)

	username := strings.TrimSpace(c.String("username"))
	email := strings.ToLower(strings.TrimSpace(c.String("email")))
	password := c.String("password")
	if len(password) < cfg.PasswordMinLen {
		return fmt.Errorf("password must be at least %d characters long", cfg.PasswordMinLen)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	var user models.User
	err = db.WithContext(c.Context).Where("username = ?", username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{Username: username, Email: email, PasswordHash: hash, Role: models.RoleAdmin}
		if err := db.WithContext(c.Context).Create(&user).Error; err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		slog.Info("admin user created", "username", username, "id", user.ID)
	case err != nil:
		return fmt.Errorf("load user: %w", err)
	default:
		err := db.WithContext(c.Context).Model(&user).Updates(map[string]interface{}{
			"password": hash,
			"role":     models.RoleAdmin,
		}).Error
		if err != nil {
			return fmt.Errorf("update admin: %w", err)
		}
		slog.Info("admin user updated", "username", username, "id", user.ID)
	}
	return nil
}

func grantAdmin(c *cli.Context) error {
	username := strings.TrimSpace(c.Args().First())
	if username == "" {
		return cli.Exit("usage: advocatr grant-admin <username>", 2)
	}

	_, db, err := setup()
	if err != nil {
		return err
	}
	defer utils.CloseDB(db)

	res := db.WithContext(c.Context).Model(&models.User{}).
		Where("username = ?", username).
		Update("role", models.RoleAdmin)
	if res.Error != nil {
		return fmt.Errorf("grant admin: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return cli.Exit(fmt.Sprintf("user %q not found", username), 1)
	}
	slog.Info("admin role granted", "username", username)
	return nil
}

func importExercises(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("usage: advocatr import-exercises <file>", 2)
	}

	_, db, err := setup()
	if err != nil {
		return err
	}
	defer utils.CloseDB(db)

	im := importer.New(services.NewExerciseService(db, utils.NewValidator()))
	result, err := im.Import(c.Context, importer.ImportConfig{
		FilePath:  path,
		SheetName: c.String("sheet"),
		StartRow:  c.Int("start-row"),
	})
	if err != nil {
		return err
	}

	for _, msg := range result.Errors {
		slog.Warn("row skipped", "detail", msg)
	}
	slog.Info("import finished",
		"processed", result.TotalProcessed,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
	)
	return nil
}

func sweepTokens(c *cli.Context) error {
	_, db, err := setup()
	if err != nil {
		return err
	}
	defer utils.CloseDB(db)

	ctx, cancel := context.WithTimeout(c.Context, time.Minute)
	defer cancel()

	result, err := services.NewTokenSweeper(db).SweepExpired(ctx)
	if err != nil {
		return fmt.Errorf("sweep tokens: %w", err)
	}
	slog.Info("expired tokens removed", "reset_tokens", result.ResetTokens, "sessions", result.Sessions)
	return nil
}
