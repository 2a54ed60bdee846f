package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/abin1769/Sistem-Akademik-Universitas/internal/attendance"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/audit"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/config"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/console"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/course"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/db"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/enrollment"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/grade"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/grading"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/identity"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/logger"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/metrics"
	"github.com/abin1769/Sistem-Akademik-Universitas/internal/telemetry"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type App struct {
	config  *config.Config
	logger  *slog.Logger
	db      *bun.DB
	nats    *audit.NATSPublisher
	metrics *metrics.Metrics
	meters  *sdkmetric.MeterProvider
	state   *metrics.StateMetrics
	stores  Stores

	Auth       *identity.Authenticator
	Courses    course.Service
	Enrollment enrollment.Service
	Attendance attendance.Service
	Grades     grade.Service

	console *console.Console
}

// New loads config from the environment and wires the console to in/out.
func New(ctx context.Context, in io.Reader, out io.Writer) (*App, error) {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the same handler
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env, "persistence", cfg.Persistence.Enabled)

	return NewWithConfig(ctx, cfg, slogLogger, in, out)
}

func NewWithConfig(ctx context.Context, cfg *config.Config, slogLogger *slog.Logger, in io.Reader, out io.Writer) (*App, error) {
	policies := grading.NewRegistry()
	if _, err := policies.Resolve(cfg.Academic.DefaultPolicy); err != nil {
		return nil, fmt.Errorf("academic.default_policy: %w", err)
	}

	meterProvider, err := telemetry.InitMeterProvider(ctx, cfg.Telemetry, ServiceName, Version, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize OTel metrics, continuing without export", "error", err)
	}

	m, err := metrics.New(ServiceName, slogLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	a := &App{
		config:  cfg,
		logger:  slogLogger,
		metrics: m,
		meters:  meterProvider,
		stores:  NewStores(),
	}

	recorders := []audit.Recorder{audit.NewLogRecorder(slogLogger)}
	if cfg.Audit.NATSURL != "" {
		publisher, err := audit.NewNATSPublisher(cfg.Audit.NATSURL, cfg.Audit.NATSSubject, slogLogger)
		if err != nil {
			slogLogger.Warn("failed to initialize NATS audit publisher", "error", err)
		} else {
			slogLogger.Info("NATS audit publisher initialized successfully")
			a.nats = publisher
			recorders = append(recorders, publisher)
		}
	}
	recorder := audit.Multi(recorders...)

	repos, err := a.repositories(ctx)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	if err := a.load(ctx, repos); err != nil {
		a.close(ctx)
		return nil, err
	}

	a.Auth = identity.NewAuthenticator(a.stores.Directory, slogLogger, m)
	a.Enrollment = enrollment.NewService(a.stores.Enrollments, repos.Enrollments, enrollment.Config{
		MaxCredits: cfg.Academic.MaxCredits,
		MinCourses: cfg.Academic.MinCourses,
	}, recorder, slogLogger, m)
	a.Courses = course.NewService(a.stores.Catalog, repos.Courses, a.Enrollment, recorder, slogLogger, m)
	a.Attendance = attendance.NewService(a.stores.Sessions, a.Enrollment, repos.Attendance, recorder, slogLogger, m)
	a.Grades = grade.NewService(a.stores.Grades, policies, repos.Grades, grade.Config{
		DefaultPolicy: cfg.Academic.DefaultPolicy,
	}, recorder, slogLogger, m)

	a.state, err = metrics.NewStateMetrics(otel.Meter(ServiceName))
	if err != nil {
		slogLogger.Warn("failed to register state metrics", "error", err)
	}
	a.refreshState()

	a.console = console.New(in, out, console.Deps{
		Auth:       a.Auth,
		Directory:  a.stores.Directory,
		Courses:    a.Courses,
		Enrollment: a.Enrollment,
		Attendance: a.Attendance,
		Grades:     a.Grades,
		Stats:      a.Statistics,
		Term:       cfg.Academic.DefaultTerm,
		Logger:     slogLogger,
		Refresh:    a.refreshState,
	})

	slogLogger.Info("application initialized successfully")
	return a, nil
}

// repositories connects to postgres when persistence is enabled; otherwise
// every repository is a no-op.
func (a *App) repositories(ctx context.Context) (Repositories, error) {
	if !a.config.Persistence.Enabled {
		return Repositories{
			Users:       nopUsers{},
			Courses:     course.NewNopRepository(),
			Enrollments: enrollment.NewNopRepository(),
			Attendance:  attendance.NewNopRepository(),
			Grades:      grade.NewNopRepository(),
		}, nil
	}

	database, err := db.New(ctx, a.config.Database, a.logger)
	if err != nil {
		return Repositories{}, err
	}
	a.db = database

	if err := a.metrics.Database.RegisterDB(database.DB, otel.Meter(ServiceName)); err != nil {
		a.logger.Warn("failed to register database metrics", "error", err)
	}

	if err := db.RunMigrations(ctx, database, a.logger, Models()...); err != nil {
		return Repositories{}, fmt.Errorf("failed to run migrations: %w", err)
	}

	return Repositories{
		Users:       identity.NewRepository(database, a.metrics),
		Courses:     course.NewRepository(database, a.metrics),
		Enrollments: enrollment.NewRepository(database, a.metrics),
		Attendance:  attendance.NewRepository(database, a.metrics),
		Grades:      grade.NewRepository(database, a.metrics),
	}, nil
}

// load hydrates from the database, seeding it when it holds no users.
func (a *App) load(ctx context.Context, repos Repositories) error {
	if a.config.Persistence.Enabled {
		if err := Hydrate(ctx, repos, a.stores, a.logger); err != nil {
			return err
		}
		if a.stores.Directory.CountStudents()+a.stores.Directory.CountInstructors() > 0 {
			return nil
		}
		a.logger.Info("database is empty, installing seed data")
	}
	if err := Seed(ctx, repos, a.stores); err != nil {
		return fmt.Errorf("failed to seed data: %w", err)
	}
	return nil
}

// Models lists every table, in creation order.
func Models() []any {
	var models []any
	models = append(models, identity.Models()...)
	models = append(models, course.Models()...)
	models = append(models, enrollment.Models()...)
	models = append(models, attendance.Models()...)
	models = append(models, grade.Models()...)
	return models
}

// Statistics counts the records in the academic state.
func (a *App) Statistics() console.Statistics {
	return console.Statistics{
		Students:    a.stores.Directory.CountStudents(),
		Instructors: a.stores.Directory.CountInstructors(),
		Courses:     a.stores.Catalog.Len(),
		Enrollments: a.Enrollment.Count(),
		Sessions:    a.Attendance.Count(),
		Grades:      a.Grades.Count(),
	}
}

// refreshState publishes current counts to the metrics collector. It must
// run on the goroutine that mutates the stores.
func (a *App) refreshState() {
	a.state.Update(a.snapshot())
}

func (a *App) snapshot() map[string]int64 {
	st := a.Statistics()
	return map[string]int64{
		"students":    int64(st.Students),
		"instructors": int64(st.Instructors),
		"courses":     int64(st.Courses),
		"enrollments": int64(st.Enrollments),
		"sessions":    int64(st.Sessions),
		"grades":      int64(st.Grades),
	}
}

// Directory exposes user lookups by natural key.
func (a *App) Directory() *identity.Directory {
	return a.stores.Directory
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("console starting")
	return a.console.Run(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.InfoContext(ctx, "shutting down")
	a.close(ctx)
	return nil
}

func (a *App) close(ctx context.Context) {
	if a.nats != nil {
		if err := a.nats.Close(); err != nil {
			a.logger.Warn("failed to drain NATS connection", "error", err)
		}
		a.nats = nil
	}
	db.Close(a.db)
	a.db = nil
	if err := telemetry.Shutdown(ctx, a.meters, a.logger); err != nil {
		a.logger.Warn("failed to flush metrics", "error", err)
	}
	a.meters = nil
}
