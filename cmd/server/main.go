package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/pixelforum/internal/authimpl"
	"github.com/ignite/pixelforum/internal/cache"
	"github.com/ignite/pixelforum/internal/config"
	"github.com/ignite/pixelforum/internal/errreport"
	"github.com/ignite/pixelforum/internal/forum"
	"github.com/ignite/pixelforum/internal/httpapi"
	"github.com/ignite/pixelforum/internal/idalloc"
	"github.com/ignite/pixelforum/internal/logger"
	"github.com/ignite/pixelforum/internal/psnclient"
	"github.com/ignite/pixelforum/internal/psnqueue"
	"github.com/ignite/pixelforum/internal/reconcile"
	"github.com/ignite/pixelforum/internal/store"
	"github.com/ignite/pixelforum/internal/talk"
)

// checkPortAvailable verifies that the target port is not already in
// use, so a stale process occupying it fails fast with a clear error
// instead of the new listener silently losing the bind race.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %s is already in use: %w", addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  PixelForum Server (cmd/server/main.go)                     ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	cfg := config.LoadFromEnv()

	addr := net.JoinHostPort(cfg.Server.IP, cfg.Server.Port)
	if err := checkPortAvailable(addr); err != nil {
		log.Fatalf("pre-flight check failed: %v", err)
	}
	log.Printf("pre-flight check passed: %s is available", addr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.DB.Close()
	log.Println("connected to primary store")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("redis: parse %q: %v", cfg.Redis.URL, err)
	}
	rdb := redis.NewClient(redisOpts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: ping: %v", err)
	}
	defer rdb.Close()
	log.Println("connected to cache store")

	c := cache.New(rdb)

	ids, err := idalloc.New(ctx, st.MaxUserID, st.MaxTopicID, st.MaxPostID, st.MaxCategoryID)
	if err != nil {
		log.Fatalf("idalloc: %v", err)
	}

	report := errreport.New(cfg.PSN.UseErrReport)
	mailNotifier := errreport.NewMailNotifier(cfg.Mail)
	smsNotifier := errreport.NewSMSNotifier(cfg.SMS)
	reporter := errreport.NewService(report, mailNotifier, smsNotifier)
	go reporter.Run(ctx)
	log.Println("error reporter started")

	failedWriter := reconcile.NewFailedWriter(st, c)
	listUpdater := reconcile.NewListUpdater(c)
	scheduler := reconcile.New(listUpdater, failedWriter, reporter)
	go scheduler.Run(ctx)
	log.Println("reconciliation scheduler started")

	psnClient := psnclient.New()
	psnActor := psnqueue.New(psnClient, st, c, reporter)
	if cfg.PSN.NPSSO != "" || cfg.PSN.RefreshToken != "" {
		var npsso, refresh *string
		if cfg.PSN.NPSSO != "" {
			npsso = &cfg.PSN.NPSSO
		}
		if cfg.PSN.RefreshToken != "" {
			refresh = &cfg.PSN.RefreshToken
		}
		psnActor.Push(psnqueue.Request{Kind: psnqueue.KindAuth, NPSSO: npsso, RefreshToken: refresh}, true)
	}
	go psnActor.Run(ctx)
	log.Println("PSN request queue started")

	talkService, err := talk.Init(ctx, st)
	if err != nil {
		log.Fatalf("talk: %v", err)
	}

	forumService := forum.New(st, c, ids, failedWriter)
	auth := authimpl.New(cfg.Auth.JWTSecret, cfg.Auth.HashRounds)

	handlers := httpapi.New(forumService, talkService, c, st, psnActor, auth)
	router := httpapi.NewRouter(handlers)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server: %v", err)
		}
	}()

	log.Println("all services initialized — server is ready")

	<-ctx.Done()
	log.Println("shutdown signal received, draining connections")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err.Error())
	}
	log.Println("shutdown complete")
}
