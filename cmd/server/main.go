package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/litihq/liti-server/internal/config"
	"github.com/litihq/liti-server/internal/httpapi"
	"github.com/litihq/liti-server/internal/store"
	"github.com/litihq/liti-server/internal/store/dbstore"
	"github.com/litihq/liti-server/internal/store/docstore"
)

func main() {
	cfg := config.Load()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	var (
		st  store.Store
		err error
	)
	switch cfg.StoreBackend {
	case "db":
		st, err = dbstore.Open(cfg.DBDriver, cfg.DBDSN)
	case "", "file":
		st, err = docstore.Open(cfg.DataDir)
	default:
		log.Fatalf("unsupported STORE_BACKEND=%q", cfg.StoreBackend)
	}
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.EnsureSeeded(ctx, st); err != nil {
		log.Fatalf("seed defaults: %v", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: httpapi.NewRouter(st, cfg),
	}

	go func() {
		log.Printf("server started addr=%s backend=%s", srv.Addr, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown err=%v", err)
	}
}
