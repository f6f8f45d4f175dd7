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

	"ragtime/internal/config"
	"ragtime/internal/logger"
	"ragtime/internal/pkg"
	"ragtime/internal/repository/rdb"
	"ragtime/internal/repository/redis"
	"ragtime/internal/router"
	"ragtime/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const usage = `usage: ragtime [serve|deploy]

  serve   run the web server (default)
  deploy  migrate the schema, seed roles and repair existing users`

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.InitLogger(logger.ParseLevel(cfg.LogLevel), cfg.LogFolder)
	defer logger.CloseLogger()

	switch cmd {
	case "serve":
		err = serve(cfg)
	case "deploy":
		err = deploy(cfg)
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := rdb.Open(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.IsDebug())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// 自动建表
	if err := rdb.AutoMigrate(db); err != nil {
		_ = rdb.Close(db)
		return nil, err
	}
	return db, nil
}

// deploy 建表、初始化角色并修复已有用户
func deploy(cfg *config.Config) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer rdb.Close(db)

	ctx := context.Background()
	store := rdb.NewStore(db)
	if err := service.NewRoleService(store).InsertRoles(ctx); err != nil {
		return fmt.Errorf("insert roles: %w", err)
	}
	users := service.NewUserService(store, pkg.NewTokenSigner(cfg.SecretKey), nil, service.AdminNamePolicy{AdminName: cfg.AdminName}, nil)
	fixed, err := users.MakeNewUsersUserRole(ctx)
	if err != nil {
		return fmt.Errorf("repair roles: %w", err)
	}
	follows, err := service.NewFollowService(store).AddSelfFollows(ctx)
	if err != nil {
		return fmt.Errorf("add self follows: %w", err)
	}
	logger.Infof("deploy done: %d users given the default role, %d self follows added", fixed, follows)
	return nil
}

func newMailer(cfg *config.Config) pkg.Mailer {
	if !cfg.MailEnabled() {
		return pkg.LogMailer{SubjectPrefix: cfg.MailSubjectPrefix}
	}
	return pkg.NewSMTPMailer(pkg.SMTPConfig{
		Host:          cfg.MailServer,
		Port:          cfg.MailPort,
		Username:      cfg.MailUsername,
		Password:      cfg.MailPassword,
		From:          cfg.MailSender,
		SubjectPrefix: cfg.MailSubjectPrefix,
	})
}

func serve(cfg *config.Config) error {
	if !cfg.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer rdb.Close(db)

	// 连接redis
	conn, err := redis.Open(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer conn.Close()

	store := rdb.NewStore(db)
	email := service.NewEmailService(newMailer(cfg), cfg.AdminEmail)
	users := service.NewUserService(
		store,
		pkg.NewTokenSigner(cfg.SecretKey),
		&redis.TokenRepository{Client: conn.Client},
		service.AdminNamePolicy{AdminName: cfg.AdminName},
		email,
	)
	follows := service.NewFollowService(store)

	sender := service.Sender(service.LogSender)
	if len(cfg.KafkaBrokers) > 0 {
		producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		defer producer.Close()
		sender = service.KafkaSender(producer)
		logger.Infof("relaying follow events to kafka topic %s", producer.Topic())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go service.NewOutboxRelayer(store, sender).Run(ctx)

	r := router.InitRouter(router.Deps{
		Store:            store,
		Users:            users,
		Follows:          follows,
		Compositions:     service.NewCompositionService(store, cfg.CompsPerPage),
		Roles:            service.NewRoleService(store),
		SecretKey:        cfg.SecretKey,
		HTTPSRedirect:    cfg.HTTPSRedirect,
		FollowersPerPage: cfg.FollowersPerPage,
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s (%s)", cfg.Addr, cfg.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
