// Package repo implements repository creation on behalf of a calling agent:
// one validated request in, one outbound GitHub call, one textual outcome out.
package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wilhg/github-mcp/pkg/config"
	"github.com/wilhg/github-mcp/pkg/errmodel"
	"github.com/wilhg/github-mcp/pkg/ghapi"
	"github.com/wilhg/github-mcp/pkg/logging"
)

// MissingTokenMessage is returned, without any network I/O, when no
// credential is configured.
const MissingTokenMessage = "GitHub Personal Access Token is not configured. Please set the " + config.EnvToken + " environment variable."

// Creator performs the outbound create call.
type Creator interface {
	CreateRepository(ctx context.Context, token string, in ghapi.NewRepository) (ghapi.Repository, error)
}

// Handler turns a CreationRequest into an Outcome. It keeps no state between
// calls and may be used concurrently.
type Handler struct {
	gh  config.GitHub
	api Creator
	log *logrus.Logger
}

// NewHandler wires the credential and the transport. A nil logger discards output.
func NewHandler(gh config.GitHub, api Creator, log *logrus.Logger) *Handler {
	if log == nil {
		log = logging.Discard()
	}
	return &Handler{gh: gh, api: api, log: log}
}

// Handle never panics and never returns an error: every failure is folded
// into a Failure outcome.
func (h *Handler) Handle(ctx context.Context, req CreationRequest) (out Outcome) {
	ctx, span := otel.Tracer("repo").Start(ctx, "repo.Create", trace.WithAttributes(
		attribute.String("repo.name", req.Name),
		attribute.Bool("repo.private", req.Private),
	))
	defer span.End()

	entry := logging.WithTrace(ctx, h.log.WithFields(logrus.Fields{
		"call_id": uuid.NewString(),
		"tool":    "create-repository",
		"repo":    req.Name,
		"private": req.Private,
	}))

	defer func() {
		if r := recover(); r != nil {
			out = Failure(KindTransport, fmt.Sprint(r))
			entry.WithField("panic", r).Error("create repository panicked")
		}
		if !out.OK() {
			span.SetAttributes(attribute.String("repo.error_kind", string(out.Kind())))
			span.SetStatus(codes.Error, out.Diagnostic())
		}
	}()

	if !h.gh.HasToken() {
		entry.Warn("github token not configured")
		return Failure(KindConfiguration, MissingTokenMessage)
	}
	if strings.TrimSpace(req.Name) == "" {
		entry.Warn("repository name missing")
		return Failure(KindValidation, "Repository name is required.")
	}

	repo, err := h.api.CreateRepository(ctx, strings.TrimSpace(h.gh.Token), ghapi.NewRepository{
		Name:        req.Name,
		Description: req.Description,
		Private:     req.Private,
		AutoInit:    true,
	})
	if err != nil {
		span.RecordError(err)
		return h.failure(entry, err)
	}
	entry.WithFields(logrus.Fields{"status": repo.Status, "outcome": "created", "html_url": repo.HTMLURL}).Info("repository created")
	return Success(repo.HTMLURL)
}

func (h *Handler) failure(entry *logrus.Entry, err error) Outcome {
	ce := errmodel.From(err)
	switch ce.Category {
	case errmodel.CategoryUpstream:
		body, _ := errmodel.Body(ce)
		entry.WithFields(logrus.Fields{"status": ce.Context["status"], "outcome": "rejected", "code": ce.Code}).Warn("github rejected repository creation")
		return Failure(KindUpstream, body)
	default:
		entry.WithFields(logrus.Fields{"outcome": "error", "code": ce.Code}).WithError(err).Error("repository creation failed")
		return Failure(KindTransport, ce.Message)
	}
}
