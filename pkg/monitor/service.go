package monitor

import (
	"context"
	"time"

	"github.com/bonial-oss/change-monitor/pkg/config"
	"github.com/bonial-oss/change-monitor/pkg/extract"
	"github.com/bonial-oss/change-monitor/pkg/fetch"
	"github.com/bonial-oss/change-monitor/pkg/models"
	"github.com/bonial-oss/change-monitor/pkg/monitor/metrics"
	"github.com/bonial-oss/change-monitor/pkg/normalize"
	"github.com/bonial-oss/change-monitor/pkg/notify"
	"github.com/bonial-oss/change-monitor/pkg/store"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bonial-oss/change-monitor/pkg/monitor"

// Fetcher is the interface for retrieving the monitored content.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// StoreOpener opens the state store identified by url.
type StoreOpener func(ctx context.Context, url string) (store.Interface, error)

// Result describes the outcome of a single run.
type Result struct {
	// PreviousValue is nil if no value was recorded before the run.
	PreviousValue *string

	// Value is the normalized value extracted in this run.
	Value string

	// Changed is true if Value differs from PreviousValue.
	Changed bool

	// Notified is true if the change notification was delivered.
	Notified bool

	// Err is the error that aborted the run, if any.
	Err error
}

// Option configures a *Service.
type Option func(*Service)

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(fetcher Fetcher) Option {
	return func(s *Service) {
		s.fetcher = fetcher
	}
}

// WithRegistry replaces the extraction strategy registry.
func WithRegistry(registry *extract.Registry) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

// WithStoreOpener replaces the function used to open the state store.
func WithStoreOpener(opener StoreOpener) Option {
	return func(s *Service) {
		s.openStore = opener
	}
}

// WithNotifier replaces the notifier.
func WithNotifier(notifier notify.Interface) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

// Service runs the change detection pipeline for one monitor.
type Service struct {
	options   *config.Options
	fetcher   Fetcher
	registry  *extract.Registry
	openStore StoreOpener
	notifier  notify.Interface
	tracer    trace.Tracer
}

// NewService creates a new *Service for the monitor described by options.
// Returns an error if the notifier cannot be created.
func NewService(options *config.Options, opts ...Option) (*Service, error) {
	s := &Service{
		options:   options,
		registry:  extract.Default,
		openStore: store.Open,
		tracer:    otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.fetcher == nil {
		s.fetcher = fetch.New(fetch.Options{
			UserAgent:       options.UserAgent,
			Headers:         options.Headers,
			Timeout:         options.Timeout.Duration,
			FailOnHTTPError: options.FailOnHTTPError,
		})
	}

	if s.notifier == nil {
		notifier, err := notify.New(options.NotifyURL)
		if err != nil {
			return nil, err
		}

		s.notifier = notifier
	}

	return s, nil
}

// Run executes the pipeline once: the content is fetched, the value
// extracted and normalized, compared against the stored value and written
// back. A notification is sent if the value changed. Any fetch, extraction
// or store error aborts the run and is reported through the notifier
// instead. Notification failures are only logged. The returned *Result is
// never nil.
func (s *Service) Run(ctx context.Context) *Result {
	start := time.Now()

	log := logr.FromContextOrDiscard(ctx).WithValues("monitor", s.options.Name, "runID", uuid.NewString())
	ctx = logr.NewContext(ctx, log)

	ctx, span := s.tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.String("monitor.name", s.options.Name),
		attribute.String("monitor.url", s.options.URL),
		attribute.String("monitor.type", string(s.options.Type)),
	))
	defer span.End()

	result := s.run(ctx)

	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())

		s.reportError(ctx, result.Err)
	}

	s.observe(result)

	log.V(1).Info("run finished", "changed", result.Changed, "notified", result.Notified, "duration", time.Since(start))

	return result
}

func (s *Service) run(ctx context.Context) *Result {
	content, err := s.fetch(ctx)
	if err != nil {
		return &Result{Err: err}
	}

	raw, err := s.extract(ctx, content)
	if err != nil {
		return &Result{Err: err}
	}

	return s.compare(ctx, normalize.Value(raw))
}

func (s *Service) fetch(ctx context.Context) (string, error) {
	ctx, span := s.tracer.Start(ctx, "Fetch")
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues(s.options.Name).Observe(time.Since(start).Seconds())
	}()

	content, err := s.fetcher.Fetch(ctx, s.options.URL)
	if err != nil {
		return "", kindError(models.KindFetch, err)
	}

	return content, nil
}

func (s *Service) extract(ctx context.Context, content string) (string, error) {
	_, span := s.tracer.Start(ctx, "Extract")
	defer span.End()

	extractor, err := s.registry.New(s.options.Type, s.options.Expression)
	if err != nil {
		return "", kindError(models.KindExtraction, err)
	}

	value, err := extractor.Extract(content)
	if err != nil {
		return "", kindError(models.KindExtraction, err)
	}

	return value, nil
}

func (s *Service) compare(ctx context.Context, value string) *Result {
	log := logr.FromContextOrDiscard(ctx)

	ctx, span := s.tracer.Start(ctx, "Compare")
	defer span.End()

	result := &Result{Value: value}

	st, err := s.openStore(ctx, s.options.StoreURL)
	if err != nil {
		result.Err = kindError(models.KindStore, errors.Wrap(err, "failed to open store"))
		return result
	}

	defer func() {
		if err := st.Close(); err != nil {
			log.Error(err, "failed to close store")
		}
	}()

	record, err := st.Get(ctx, s.options.Name)
	switch {
	case err == nil:
		previous := record.Value
		result.PreviousValue = &previous
	case errors.Is(err, models.ErrRecordNotFound):
		log.V(1).Info("no previous value recorded")
	default:
		result.Err = kindError(models.KindStore, err)
		return result
	}

	if result.PreviousValue != nil {
		log.Info("last value", "value", *result.PreviousValue)
	}

	log.Info("new value", "value", value)

	err = st.Put(ctx, &models.Record{Name: s.options.Name, Value: value})
	if err != nil {
		result.Err = kindError(models.KindStore, err)
		return result
	}

	result.Changed = result.PreviousValue == nil || *result.PreviousValue != value

	if result.Changed {
		logDiff(log, result.PreviousValue, value)

		result.Notified = s.send(ctx, "Value: "+value)
	} else {
		log.V(1).Info("value unchanged, not notifying")
	}

	if s.options.DeleteAfterRun {
		s.deleteRecord(ctx, st)
	}

	return result
}

func (s *Service) deleteRecord(ctx context.Context, st store.Interface) {
	log := logr.FromContextOrDiscard(ctx)

	err := st.Delete(ctx, s.options.Name)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(s.options.Name, string(models.KindStore)).Inc()
		log.Error(err, "failed to delete record after run")
		return
	}

	log.V(1).Info("record deleted after run")
}

func (s *Service) reportError(ctx context.Context, err error) {
	log := logr.FromContextOrDiscard(ctx)

	kind := models.KindOf(err)

	metrics.ErrorsTotal.WithLabelValues(s.options.Name, string(kind)).Inc()
	log.Error(err, "run failed", "kind", kind)

	s.send(ctx, models.Summarize(err))
}

// send delivers payload and reports whether it succeeded. Failures are
// logged and counted, never returned.
func (s *Service) send(ctx context.Context, payload string) bool {
	log := logr.FromContextOrDiscard(ctx)

	ctx, span := s.tracer.Start(ctx, "Notify")
	defer span.End()

	text := notify.FormatMessage(s.options.NotifyTitle, s.options.Name, s.options.URL, payload)

	err := s.notifier.Send(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		metrics.ErrorsTotal.WithLabelValues(s.options.Name, string(models.KindNotify)).Inc()
		log.Error(err, "failed to send notification")

		return false
	}

	log.V(1).Info("notification sent")

	return true
}

func (s *Service) observe(result *Result) {
	name := s.options.Name

	outcome := metrics.OutcomeUnchanged
	switch {
	case result.Err != nil:
		outcome = metrics.OutcomeError
	case result.Changed:
		outcome = metrics.OutcomeChanged
		metrics.ChangesTotal.WithLabelValues(name).Inc()
	}

	metrics.RunsTotal.WithLabelValues(name, outcome).Inc()
	metrics.LastRunTimestamp.WithLabelValues(name).SetToCurrentTime()
}

// kindError attaches kind to err unless err already carries a kind.
func kindError(kind models.Kind, err error) error {
	var e *models.Error
	if errors.As(err, &e) {
		return err
	}

	return models.NewError(kind, err)
}

func logDiff(log logr.Logger, previous *string, value string) {
	if previous == nil || !log.V(1).Enabled() {
		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(*previous, value, false))

	log.V(1).Info("value changed", "diff", dmp.PatchToText(dmp.PatchMake(*previous, diffs)))
}
