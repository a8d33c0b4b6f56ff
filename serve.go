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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"GEMA-backend/docs"
	"GEMA-backend/internal/activity"
	"GEMA-backend/internal/attendance"
	"GEMA-backend/internal/grouping"
	"GEMA-backend/internal/member"
	"GEMA-backend/internal/platform/auth"
	"GEMA-backend/internal/platform/db"
	"GEMA-backend/internal/platform/httpx"
	"GEMA-backend/internal/platform/session"
	"GEMA-backend/internal/report"
)

type serveFlags struct {
	public  string
	migrate bool
}

func serveCmd(g *globalFlags) *cobra.Command {
	var f serveFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTPS API and dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(g, f)
		},
	}
	cmd.Flags().StringVar(&f.public, "public", "public", "directory with the built dashboard (skipped if missing)")
	cmd.Flags().BoolVar(&f.migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func runServe(g *globalFlags, f serveFlags) error {
	cfg, conn, err := open(g)
	if err != nil {
		return err
	}
	defer conn.Close()

	if f.migrate {
		if err := db.Migrate(context.Background(), conn); err != nil {
			return err
		}
	}

	authSvc, err := newAuthService(cfg, conn)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(15*time.Second))
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		r.Use(httpx.CORS(cfg.Server.CORSOrigins))
		docs.SwaggerInfo.Version = version
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/healthz", func(c *gin.Context) {
		if err := conn.PingContext(c.Request.Context()); err != nil {
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api/v1")
	private := api.Group("", auth.RequireAuth(authSvc))
	auth.RegisterRoutes(api.Group("/auth"), private.Group("/auth"), authSvc)

	attendanceSvc := attendance.NewService(conn)
	groupingSvc := grouping.NewService(conn, cfg.Grouping.ExcludedNames)
	attendance.RegisterRoutes(private, attendanceSvc)
	grouping.RegisterRoutes(private, groupingSvc)
	member.RegisterRoutes(private, member.NewService(conn))
	activity.RegisterRoutes(private, activity.NewService(conn))
	report.RegisterRoutes(private, report.NewService(conn, attendanceSvc, groupingSvc))

	if st, err := os.Stat(f.public); err == nil && st.IsDir() {
		r.NoRoute(httpx.SPA(os.DirFS(f.public)))
	} else {
		log.Printf("[WARN] dashboard directory %q not found, serving API only", f.public)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeLoop(ctx, session.NewSQLBackend(conn), cfg.SessionDuration())

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		var err error
		if cfg.Certificate.Cert != "" {
			certFile := fmt.Sprintf("config/tls/%s/%s", cfg.Mode, cfg.Certificate.Cert)
			keyFile := fmt.Sprintf("config/tls/%s/%s", cfg.Mode, cfg.Certificate.Key)
			log.Printf("[INFO] listening on https://%s", cfg.Server.Addr)
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Printf("[WARN] no certificate configured, listening on http://%s", cfg.Server.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Println("[INFO] shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// purgeLoop drops expired session rows once an hour until ctx ends.
func purgeLoop(ctx context.Context, b *session.SQLBackend, d time.Duration) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		_, _ = purgeSessions(ctx, b, d)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
