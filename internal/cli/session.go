package cli

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/hotflow/internal/app"
	"github.com/yungbote/hotflow/internal/observability"
	"github.com/yungbote/hotflow/internal/platform/ctxutil"
	"github.com/yungbote/hotflow/internal/platform/logger"
)

// session is the state of one command run: settings, a run-scoped logger,
// the opened App and the root span.
type session struct {
	ctx      context.Context
	log      *logger.Logger
	app      *app.App
	span     trace.Span
	shutdown func(context.Context) error
}

func start(cmd *cobra.Command, v *viper.Viper) (*session, error) {
	cfg, err := app.LoadSettings(v)
	if err != nil {
		return nil, err
	}
	baseLog, err := logger.NewWithOptions(logger.Options{Mode: cfg.LogMode, Verbose: cfg.Verbose})
	if err != nil {
		return nil, err
	}

	rd := &ctxutil.RunData{RunID: uuid.NewString(), Command: cmd.Name()}
	log := baseLog.With("run_id", rd.RunID, "command", rd.Command)
	ctx := ctxutil.WithRunData(cmd.Context(), rd)

	shutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "hotflow",
		Environment: cfg.LogMode,
	})
	ctx, span := otel.Tracer("hotflow/cli").Start(ctx, "cli."+rd.Command,
		trace.WithAttributes(attribute.String("run_id", rd.RunID)),
	)

	s := &session{ctx: ctx, log: log, span: span, shutdown: shutdown}
	a, err := app.New(cfg, log)
	if err != nil {
		s.finish(err)
		return nil, err
	}
	s.app = a
	log.Debug("command started")
	return s, nil
}

func (s *session) finish(err error) {
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		s.log.Error("command failed", "error", err)
	}
	s.span.End()
	s.app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := s.shutdown(ctx); shutdownErr != nil {
		s.log.Warn("otel shutdown", "error", shutdownErr)
	}
	s.log.Sync()
}

// runE opens a session around fn and tears it down afterwards.
func runE(v *viper.Viper, fn func(s *session, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) (err error) {
		s, err := start(cmd, v)
		if err != nil {
			return err
		}
		defer func() { s.finish(err) }()
		return fn(s, cmd)
	}
}
