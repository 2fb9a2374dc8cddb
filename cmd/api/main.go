package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"secondhand/internal/config"
	"secondhand/internal/infra/db"
	"secondhand/internal/infra/event"
	"secondhand/internal/infra/storage"
	"secondhand/internal/server"
	"secondhand/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	//.envは無くてもよい（本番は環境変数）
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Fatal("failed to load .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	if cfg.InsecureDevSecret {
		log.Warn("JWT_SECRET is not set; using the development secret")
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	//画像の保存先（S3_BUCKETがあればS3）
	var images usecase.ImageStore
	if cfg.S3.Bucket != "" {
		images, err = storage.NewS3ImageStore(cfg.S3)
	} else {
		images, err = storage.NewLocalImageStore(cfg.UploadDir, cfg.ImageURLPrefix)
	}
	if err != nil {
		log.WithError(err).Fatal("failed to init image store")
	}

	//イベント送信（ブローカー未設定なら捨てる）
	var events interface {
		usecase.EventPublisher
		Close() error
	} = event.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		events = event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
	}
	defer func() {
		if err := events.Close(); err != nil {
			log.WithError(err).Warn("failed to close event publisher")
		}
	}()

	srv := server.New(server.Deps{
		Config: cfg,
		Log:    log,
		DB:     gormDB,
		Images: images,
		Events: events,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.SeedAdmin(ctx); err != nil {
		log.WithError(err).Fatal("failed to seed admin")
	}

	//Server起動
	if err := srv.Start(ctx); err != nil {
		log.WithError(err).Error("server stopped")
	}
}
