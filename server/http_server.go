package server

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AvaProtocol/txdecode/core/config"
	"github.com/AvaProtocol/txdecode/core/pipeline"
	"github.com/AvaProtocol/txdecode/version"
)

var (
	//go:embed resources
	res embed.FS
)

type HttpJsonResp[T any] struct {
	Data T `json:"data"`
}

type DecodeRequest struct {
	TxHash  string `json:"tx_hash" form:"tx_hash" validate:"required"`
	Network string `json:"network" form:"network"`
}

// NetworkView is a network as listed to clients. RPC URLs can embed API keys,
// so only the name and explorer are exposed.
type NetworkView struct {
	Name        string `json:"name"`
	ChainID     int64  `json:"chain_id"`
	ExplorerURL string `json:"explorer_url,omitempty"`
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.Logger())
	if s.config.SentryDsn != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic:         true,
			WaitForDelivery: false,
		}))
	}
	e.Use(middleware.Recover())
	e.Use(traceContext)

	e.GET("/up", func(c echo.Context) error {
		return c.String(http.StatusOK, "up")
	})

	e.GET("/networks", func(c echo.Context) error {
		views := make([]NetworkView, 0, len(s.config.Networks))
		for _, n := range s.config.Networks {
			views = append(views, NetworkView{Name: n.Name, ChainID: n.ChainID, ExplorerURL: n.ExplorerURL})
		}
		return c.JSON(http.StatusOK, &HttpJsonResp[[]NetworkView]{Data: views})
	})

	e.POST("/decode", s.handleDecode)

	e.GET("/result/latest", func(c echo.Context) error {
		latest := s.dispatcher.Board().Latest()
		if latest == nil {
			return echo.NewHTTPError(http.StatusNotFound, "no result yet")
		}
		return c.JSON(http.StatusOK, &HttpJsonResp[*pipeline.Result]{Data: latest})
	})

	e.GET("/", s.handleIndex)

	if s.config.MetricsEnabled && s.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	return e
}

// traceContext continues a W3C trace started by the caller so the decode
// spans join it.
func traceContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

func (s *Server) handleDecode(c echo.Context) error {
	var req DecodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "tx_hash is required")
	}

	result, err := s.dispatcher.Submit(c.Request().Context(), req.TxHash, req.Network)
	if isFormPost(c) && (err == nil || errors.Is(err, pipeline.ErrSuperseded)) {
		// the index page renders the board's latest result
		return c.Redirect(http.StatusSeeOther, "/")
	}

	switch {
	case err == nil:
		return c.JSON(http.StatusOK, &HttpJsonResp[*pipeline.Result]{Data: result})
	case errors.Is(err, pipeline.ErrUnknownNetwork):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, pipeline.ErrRequestInFlight), errors.Is(err, pipeline.ErrCoolingDown):
		return echo.NewHTTPError(http.StatusTooManyRequests, err.Error())
	case errors.Is(err, pipeline.ErrSuperseded):
		return c.JSON(http.StatusConflict, &HttpJsonResp[*pipeline.Result]{Data: result})
	default:
		s.logger.Error("decode request failed", "tx_hash", req.TxHash, "error", err)
		return err
	}
}

func isFormPost(c echo.Context) bool {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ctype, echo.MIMEApplicationForm) || strings.HasPrefix(ctype, echo.MIMEMultipartForm)
}

// handleIndex renders the latest result as a page, the way the original
// browser tool laid it out: transaction on one side, generated code on the other.
func (s *Server) handleIndex(c echo.Context) error {
	tpl, err := template.ParseFS(res, "resources/*.gohtml")
	if err != nil {
		s.logger.Errorf("error rendering index %v", err)
		return err
	}

	latest := s.dispatcher.Board().Latest()
	var network config.Network
	if latest != nil {
		network, _ = s.config.LookupNetwork(latest.Network)
	}

	data := struct {
		Version  string
		Revision string
		Networks []string
		Result   *pipeline.Result
		TxURL    string
	}{
		Version:  version.Get(),
		Revision: version.Commit(),
		Networks: s.config.NetworkNames(),
		Result:   latest,
	}
	if latest != nil {
		data.TxURL = network.TxURL(latest.TxHash)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "index.gohtml", data); err != nil {
		s.logger.Errorf("error rendering index %v", err)
		return err
	}

	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
