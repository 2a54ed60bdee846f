package metrics

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database *DatabaseMetrics

	registrations   metric.Int64Counter
	coursesAdded    metric.Int64Counter
	coursesDropped  metric.Int64Counter
	sessionsOpened  metric.Int64Counter
	checkIns        metric.Int64Counter
	scoresEntered   metric.Int64Counter
	coursesChanged  metric.Int64Counter
	loginsAttempted metric.Int64Counter
}

func New(serviceName string, logger *slog.Logger) (*Metrics, error) {
	meter := otel.Meter(serviceName)

	m := &Metrics{}

	var err error

	m.registrations, err = meter.Int64Counter(
		"siak.enrollment.registered",
		metric.WithDescription("Total number of registration forms created"),
		metric.WithUnit("{form}"),
	)
	if err != nil {
		return nil, err
	}

	m.coursesAdded, err = meter.Int64Counter(
		"siak.enrollment.added",
		metric.WithDescription("Total number of courses added to existing registration forms"),
		metric.WithUnit("{course}"),
	)
	if err != nil {
		return nil, err
	}

	m.coursesDropped, err = meter.Int64Counter(
		"siak.enrollment.dropped",
		metric.WithDescription("Total number of courses dropped from registration forms"),
		metric.WithUnit("{course}"),
	)
	if err != nil {
		return nil, err
	}

	m.sessionsOpened, err = meter.Int64Counter(
		"siak.attendance.sessions_opened",
		metric.WithDescription("Total number of attendance sessions opened"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	m.checkIns, err = meter.Int64Counter(
		"siak.attendance.check_ins",
		metric.WithDescription("Total number of student check-ins"),
		metric.WithUnit("{check_in}"),
	)
	if err != nil {
		return nil, err
	}

	m.scoresEntered, err = meter.Int64Counter(
		"siak.grades.entered",
		metric.WithDescription("Total number of scores entered or corrected"),
		metric.WithUnit("{score}"),
	)
	if err != nil {
		return nil, err
	}

	m.coursesChanged, err = meter.Int64Counter(
		"siak.catalog.changes",
		metric.WithDescription("Total number of course catalog changes"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, err
	}

	m.loginsAttempted, err = meter.Int64Counter(
		"siak.identity.logins",
		metric.WithDescription("Total number of login attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	m.Database, err = NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	logger.Info("metrics collectors initialized successfully")

	return m, nil
}

func (m *Metrics) RecordRegistration(ctx context.Context) {
	if m != nil && m.registrations != nil {
		m.registrations.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCourseAdded(ctx context.Context) {
	if m != nil && m.coursesAdded != nil {
		m.coursesAdded.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCourseDropped(ctx context.Context) {
	if m != nil && m.coursesDropped != nil {
		m.coursesDropped.Add(ctx, 1)
	}
}

func (m *Metrics) RecordSessionOpened(ctx context.Context) {
	if m != nil && m.sessionsOpened != nil {
		m.sessionsOpened.Add(ctx, 1)
	}
}

func (m *Metrics) RecordCheckIn(ctx context.Context) {
	if m != nil && m.checkIns != nil {
		m.checkIns.Add(ctx, 1)
	}
}

func (m *Metrics) RecordScoreEntered(ctx context.Context, policy string, updated bool) {
	if m != nil && m.scoresEntered != nil {
		m.scoresEntered.Add(ctx, 1, metric.WithAttributes(
			attribute.String("policy", policy),
			attribute.Bool("updated", updated),
		))
	}
}

func (m *Metrics) RecordCatalogChange(ctx context.Context, operation string) {
	if m != nil && m.coursesChanged != nil {
		m.coursesChanged.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	}
}

func (m *Metrics) RecordLogin(ctx context.Context, role string, success bool) {
	if m != nil && m.loginsAttempted != nil {
		m.loginsAttempted.Add(ctx, 1, metric.WithAttributes(
			attribute.String("role", role),
			attribute.Bool("success", success),
		))
	}
}

// RecordQuery forwards to Database and tolerates a nil receiver.
func (m *Metrics) RecordQuery(ctx context.Context, operation string, table string, duration time.Duration, err error) {
	if m != nil {
		m.Database.RecordQuery(ctx, operation, table, duration, err)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}}
}
