package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	enroll "github.com/goliatone/go-enroll"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:enroll.db?cache=shared&_pragma=foreign_keys(1)"`
	SigningKey  string `env:"JWT_SIGNING_KEY,required"`
	Issuer      string `env:"JWT_ISSUER" envDefault:"go-enroll"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SMTPHost string `env:"SMTP_HOST,required"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`
	MailFrom string `env:"MAIL_FROM,required"`

	S3Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3AccessKey    string `env:"S3_ACCESS_KEY"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3BaseEndpoint string `env:"S3_BASE_ENDPOINT"`
	S3Prefix       string `env:"S3_PREFIX" envDefault:"profile_photos"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer sqldb.Close()

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := runMigrations(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	repo := enroll.NewRepositoryManager(db)
	issuer := enroll.NewTokenIssuer([]byte(cfg.SigningKey), cfg.Issuer, repo.Tokens(), nil)

	pending := newPendingStore(cfg)

	mailer := enroll.NewSMTPMailer(enroll.SMTPMailerConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.MailFrom,
	}, nil)

	var assets enroll.AssetStore
	if cfg.S3Bucket != "" {
		assets, err = enroll.NewS3AssetStore(ctx, enroll.S3AssetStoreConfig{
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			BaseEndpoint: cfg.S3BaseEndpoint,
			Prefix:       cfg.S3Prefix,
		})
		if err != nil {
			return fmt.Errorf("configure asset store: %w", err)
		}
	}

	app := fiber.New(fiber.Config{
		AppName: "go-enroll",
	})

	enroll.RegisterAuthRoutes(app,
		enroll.WithControllerRepo(repo),
		enroll.WithControllerIssuer(issuer),
		enroll.WithControllerPending(pending),
		enroll.WithControllerMailer(mailer),
		enroll.WithControllerAssets(assets),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		return app.Shutdown()
	case err := <-errCh:
		return err
	}
}

func newPendingStore(cfg Config) enroll.PendingRegistrations {
	if cfg.RedisAddr == "" {
		return enroll.NewMemoryPendingStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return enroll.NewRedisPendingStore(client)
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	dir := "data/sql/migrations"

	entries, err := fs.ReadDir(enroll.GetMigrationsFS(), dir)
	if err != nil {
		return err
	}

	var ups []string
	for _, entry := range entries {
		if name := entry.Name(); len(name) > 7 && name[len(name)-7:] == ".up.sql" {
			ups = append(ups, name)
		}
	}
	sort.Strings(ups)

	for _, name := range ups {
		stmt, err := fs.ReadFile(enroll.GetMigrationsFS(), dir+"/"+name)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, string(stmt)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
	}

	return nil
}
