package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/edusuite/honoris/core"
	"github.com/edusuite/honoris/core/academic"
	"github.com/edusuite/honoris/core/grade"
	"github.com/edusuite/honoris/core/honor"
	"github.com/edusuite/honoris/core/student"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Logger      core.Logger
		AcademicSvc *academic.Service
		StudentSvc  *student.Service
		GradeSvc    *grade.Service
		HonorSvc    *honor.Service
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		ShutdownSignal() <-chan os.Signal
		Errors() <-chan error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		errs:     make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	registerAcademicAPI(v1, s.opts.AcademicSvc)
	registerGradeAPI(v1, s.opts.GradeSvc)
	registerHonorAPI(v1, s.opts.HonorSvc)
}

func (s *server) Start() {
	if err := s.app.Start(s.opts.Addr); err != nil && err != http.ErrServerClosed {
		s.errs <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *server) Errors() <-chan error { return s.errs }

// signalShutdown initiates a graceful shutdown when an unrecoverable
// integrity error surfaces in a handler.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Honoris API!")
}
