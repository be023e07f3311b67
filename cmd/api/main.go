package main

import (
	"time"

	"cart/internal/checkout"
	"cart/internal/config"
	"cart/internal/engine"
	"cart/internal/handler"
	"cart/internal/infra/db"
	infraStorage "cart/internal/infra/storage"
	"cart/internal/notify"
	"cart/internal/server"
	"cart/internal/session"
	"cart/internal/storage"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// アクセストークンの有効期限
const accessTokenTTL = 15 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Warn(".env not loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("config load failed")
	}

	//保存先の選択
	var st storage.Store
	switch cfg.StoreDriver {
	case "file":
		fs, err := infraStorage.NewFileStore(cfg.CartDataDir)
		if err != nil {
			log.WithError(err).Fatal("file store init failed")
		}
		st = fs
	case "postgres":
		gormDB, err := db.Connect(cfg)
		if err != nil {
			log.WithError(err).Fatal("db connect failed")
		}
		gs, err := infraStorage.NewGormStore(gormDB)
		if err != nil {
			log.WithError(err).Fatal("gorm store init failed")
		}
		st = gs
	default:
		st = infraStorage.NewMemoryStore()
	}

	//エンジンに渡す部品
	notifier := notify.NewLogNotifier(log.StandardLogger())
	submitter := checkout.NewLogSubmitter(log.StandardLogger())
	registry := engine.NewRegistry(st, notifier, submitter, time.Duration(cfg.DebounceMS)*time.Millisecond)
	defer registry.CloseAll()

	//セッション
	sm := session.NewManager(cfg.JWTSecret, accessTokenTTL)

	//Handler生成
	authH := handler.NewAuthHandler(cfg, sm)
	cartH := handler.NewCartHandler(registry)

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(addr, authH, cartH, sm); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
