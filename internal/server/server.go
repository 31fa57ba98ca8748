// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smartboa/sbsbs/api"
	"github.com/smartboa/sbsbs/api/middleware"
	"github.com/smartboa/sbsbs/internal/config"
	"github.com/smartboa/sbsbs/internal/database"
	"github.com/smartboa/sbsbs/internal/dedupe"
	"github.com/smartboa/sbsbs/internal/drive"
	"github.com/smartboa/sbsbs/internal/monitoring"
	"github.com/smartboa/sbsbs/internal/report"
	"github.com/smartboa/sbsbs/internal/repository"
	"github.com/smartboa/sbsbs/internal/repository/csvstore"
	"github.com/smartboa/sbsbs/internal/repository/sqlstore"
	"github.com/smartboa/sbsbs/internal/stationservice"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	service    *stationservice.StationService
	monitoring *monitoring.Service
	redis      *dedupe.RedisGuard
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config: cfg,
		srv:    srv,
	}
}

// Initialize connects storage and collaborators and builds the HTTP handler
func (s *Server) Initialize(ctx context.Context) error {
	svc, err := s.initializeStationService(ctx)
	if err != nil {
		return err
	}
	if err := svc.Validate(); err != nil {
		return err
	}
	s.service = svc
	s.monitoring = monitoring.NewService()

	// Set up service event handlers
	s.setupEventHandlers()
	s.refreshStoredGauge(ctx)

	renderer, err := report.NewRenderer(s.config.Report.Title)
	if err != nil {
		return err
	}

	routerCfg := api.Config{
		Twilio: middleware.TwilioConfig{
			AuthToken: s.config.Twilio.AuthToken,
			PublicURL: s.config.Server.PublicURL,
		},
		DataURL: s.config.Report.DataURL,
	}
	if s.config.Monitoring.MetricsEnabled {
		routerCfg.Metrics = s.monitoring.Handler()
	}
	s.srv.Handler = api.NewRouter(svc, renderer, routerCfg)
	return nil
}

// Handler returns the HTTP handler built by Initialize
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	if err := s.Initialize(context.Background()); err != nil {
		return err
	}
	defer s.Close()

	schedCtx, stopUploads := context.WithCancel(context.Background())
	uploadsDone := s.startUploadSchedule(schedCtx)

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	err := s.waitForShutdown()
	stopUploads()
	<-uploadsDone
	return err
}

// Close releases storage and cache connections
func (s *Server) Close() error {
	var firstErr error
	if s.service != nil {
		if err := s.service.Detections.Close(); err != nil {
			firstErr = err
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

func (s *Server) startUploadSchedule(ctx context.Context) <-chan struct{} {
	interval := s.config.Drive.UploadInterval
	if !s.service.UploadEnabled() || interval <= 0 {
		done := make(chan struct{})
		close(done)
		return done
	}
	nuts.L.Infof("[Server] Uploading reports to Drive every %s", interval)
	return ScheduleUploads(ctx, interval, func(ctx context.Context) error {
		_, err := s.service.UploadReport(ctx)
		return err
	})
}

func (s *Server) setupEventHandlers() {
	s.service.OnEvent(stationservice.EventDetectionStored, func(id, rfid string) {
		s.monitoring.RecordMessage("stored")
		s.monitoring.RecordEvent(stationservice.EventDetectionStored, map[string]string{
			"message_sid": id,
			"rfid":        rfid,
		})
		s.refreshStoredGauge(context.Background())
	})

	s.service.OnEvent(stationservice.EventDetectionRejected, func(id, reason string) {
		nuts.L.Infof("[StationService] Message %s rejected: %s", id, reason)
		s.monitoring.RecordMessage("rejected")
		s.monitoring.RecordEvent(stationservice.EventDetectionRejected, map[string]string{
			"message_sid": id,
		})
	})

	s.service.OnEvent(stationservice.EventDetectionDuplicate, func(id, reason string) {
		nuts.L.Infof("[StationService] Message %s ignored: %s", id, reason)
		s.monitoring.RecordMessage("duplicate")
		s.monitoring.RecordEvent(stationservice.EventDetectionDuplicate, map[string]string{
			"message_sid": id,
		})
	})

	s.service.OnEvent(stationservice.EventReportUploaded, func(name, fileID string) {
		s.monitoring.RecordUpload(true)
		s.monitoring.RecordEvent(stationservice.EventReportUploaded, map[string]string{
			"name":    name,
			"file_id": fileID,
		})
	})

	s.service.OnEvent(stationservice.EventReportUploadFailed, func(_, reason string) {
		nuts.L.Warnf("[Drive] Report upload failed: %s", reason)
		s.monitoring.RecordUpload(false)
		s.monitoring.RecordEvent(stationservice.EventReportUploadFailed, nil)
	})
}

func (s *Server) refreshStoredGauge(ctx context.Context) {
	n, err := s.service.CountDetections(ctx)
	if err != nil {
		nuts.L.Warnf("[Server] Failed to count detections: %v", err)
		return
	}
	s.monitoring.SetStored(n)
}

// initializeStationService creates and configures the station service
func (s *Server) initializeStationService(ctx context.Context) (*stationservice.StationService, error) {
	detections, err := initRepository(ctx, s.config)
	if err != nil {
		return nil, err
	}

	var guard dedupe.Guard
	if s.config.Redis.Host != "" {
		rg, err := dedupe.NewRedisGuard(ctx, &redis.Options{
			Addr:     s.config.Redis.Host + ":" + strconv.Itoa(s.config.Redis.Port),
			Password: s.config.Redis.Password,
			DB:       s.config.Redis.DB,
		}, s.config.Redis.ReplayTTL)
		if err != nil {
			detections.Close()
			return nil, err
		}
		s.redis = rg
		guard = rg
	} else {
		nuts.L.Infof("[Server] No redis configured, replay guard kept in memory")
		guard = dedupe.NewMemoryGuard(s.config.Redis.ReplayTTL)
	}

	var uploader stationservice.ReportUploader
	if s.config.Drive.Enabled {
		u, err := drive.NewUploader(ctx, s.config.Drive)
		if err != nil {
			// the hub keeps receiving detections without Drive
			nuts.L.Errorf("[Server] Drive upload disabled: %v", err)
		} else {
			uploader = u
		}
	}

	return stationservice.New(detections, guard, uploader), nil
}

func initRepository(ctx context.Context, cfg *config.Config) (repository.DetectionRepository, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgresDB(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		return initSQLStore(ctx, db)
	case config.BackendSQLite:
		db, err := database.NewSQLiteDB(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		return initSQLStore(ctx, db)
	default:
		nuts.L.Infof("[Server] Storing detections in %s", cfg.Storage.CSVPath)
		return csvstore.New(csvstore.Config{Path: cfg.Storage.CSVPath})
	}
}

func initSQLStore(ctx context.Context, db database.DB) (repository.DetectionRepository, error) {
	// Set up connection timeout
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", db.Dialect(), err)
	}
	repo, err := sqlstore.New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}
