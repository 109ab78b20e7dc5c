// Package v2 serves the link API over gRPC.
package v2

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/Totarae/linkgate/internal/model"
	"github.com/Totarae/linkgate/internal/redirect"
	"github.com/Totarae/linkgate/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// CustomMessageKey is the trailer carrying the owner's message when a
// password is required.
const CustomMessageKey = "custom-message"

var _ LinksServer = (*GRPCServer)(nil)

type GRPCServer struct {
	Service *service.LinkService
	BaseURL string
	Logger  *zap.Logger
}

func NewGRPCServer(svc *service.LinkService, baseURL string, logger *zap.Logger) *GRPCServer {
	return &GRPCServer{Service: svc, BaseURL: strings.TrimSuffix(baseURL, "/"), Logger: logger}
}

func (s *GRPCServer) CreateLink(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID := str(req, "owner_id")
	if ownerID == "" {
		return nil, status.Error(codes.InvalidArgument, "owner_id is required")
	}

	link, err := s.Service.CreateLink(ctx, model.CreateLinkRequest{
		OwnerID:        ownerID,
		DestinationURL: str(req, "destination_url"),
		Slug:           str(req, "slug"),
		Password:       req.GetFields()["password"].GetStringValue(),
		CustomMessage:  str(req, "custom_message"),
	})
	if err != nil {
		return nil, s.toStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"id":              link.ID,
		"short_code":      link.ShortCode,
		"short_url":       s.BaseURL + "/l/" + link.ShortCode,
		"destination_url": link.DestinationURL,
		"title":           link.Title,
		"protected":       link.Protected(),
	})
}

func (s *GRPCServer) Resolve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	code := str(req, "short_code")
	if code == "" {
		return nil, status.Error(codes.InvalidArgument, "short_code is required")
	}

	r := redirect.Request{ShortCode: code, Client: peerHost(ctx), Meta: model.ClickMeta{UserAgent: userAgent(ctx)}}
	if pw := req.GetFields()["password"].GetStringValue(); pw != "" {
		r.Password = &pw
	}
	out, err := s.Service.Resolve(ctx, r)
	if err != nil {
		var required *model.PasswordRequiredError
		if errors.As(err, &required) && required.CustomMessage != "" {
			_ = grpc.SetTrailer(ctx, metadata.Pairs(CustomMessageKey, required.CustomMessage))
		}
		return nil, s.toStatus(err)
	}
	return structpb.NewStruct(map[string]any{"destination_url": out.DestinationURL})
}

func (s *GRPCServer) UserSummary(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ownerID := str(req, "owner_id")
	if ownerID == "" {
		return nil, status.Error(codes.InvalidArgument, "owner_id is required")
	}
	sum, err := s.Service.UserSummary(ctx, ownerID)
	if err != nil {
		return nil, s.toStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"total_links":    sum.TotalLinks,
		"total_clicks":   sum.TotalClicks,
		"active_links":   sum.ActiveLinks,
		"average_clicks": sum.AverageClicks,
	})
}

func (s *GRPCServer) ClicksOverTime(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	link, err := s.Service.GetOwnedLink(ctx, str(req, "owner_id"), str(req, "link_id"))
	if err != nil {
		return nil, s.toStatus(err)
	}
	days := int(req.GetFields()["days"].GetNumberValue())

	var series []model.DailyClicks
	if req.GetFields()["dense"].GetBoolValue() {
		series, err = s.Service.DenseClicksOverTime(ctx, link.ID, days)
	} else {
		series, err = s.Service.ClicksOverTime(ctx, link.ID, days)
	}
	if err != nil {
		return nil, s.toStatus(err)
	}

	items := make([]any, 0, len(series))
	for _, d := range series {
		items = append(items, map[string]any{"date": d.Date, "count": d.Count})
	}
	return structpb.NewStruct(map[string]any{"series": items})
}

// CodeFor maps a service error to its gRPC status code.
func CodeFor(err error) codes.Code {
	switch {
	case errors.Is(err, model.ErrValidation):
		return codes.InvalidArgument
	case errors.Is(err, model.ErrCollision):
		return codes.AlreadyExists
	case errors.Is(err, model.ErrExhaustedRetries):
		return codes.ResourceExhausted
	case errors.Is(err, model.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, model.ErrInactiveLink):
		return codes.FailedPrecondition
	case errors.Is(err, model.ErrPasswordRequired):
		return codes.Unauthenticated
	case errors.Is(err, model.ErrPasswordRejected):
		return codes.PermissionDenied
	case errors.Is(err, model.ErrRateLimited):
		return codes.ResourceExhausted
	case errors.Is(err, model.ErrDegradedData), errors.Is(err, model.ErrStoreUnavailable):
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func (s *GRPCServer) toStatus(err error) error {
	code := CodeFor(err)
	if code == codes.Internal || code == codes.Unavailable {
		s.Logger.Error("gRPC request failed", zap.String("code", code.String()), zap.Error(err))
		return status.Error(code, code.String())
	}
	return status.Error(code, err.Error())
}

// LoggingInterceptor logs one line per unary call.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		logger.Info("gRPC Request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
		)
		return resp, err
	}
}

func str(s *structpb.Struct, key string) string {
	return strings.TrimSpace(s.GetFields()[key].GetStringValue())
}

func peerHost(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}

func userAgent(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if ua := md.Get("user-agent"); len(ua) > 0 {
		return ua[0]
	}
	return ""
}
