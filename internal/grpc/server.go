package igrpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"path"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"friendship-service/internal/models"
	"friendship-service/internal/observability"
	"friendship-service/internal/services"
)

const serviceName = "friendgraph.v1.FriendGraph"

type AreFriendsRequest struct {
	UserID   int64 `json:"user_id"`
	FriendID int64 `json:"friend_id"`
}

type AreFriendsResponse struct {
	AreFriends bool `json:"are_friends"`
	// Pending is set when the pair is not yet friends but a request is open.
	Pending bool `json:"pending"`
}

type UserRequest struct {
	UserID int64 `json:"user_id"`
}

type ListFriendsResponse struct {
	Friends []models.UserSummary `json:"friends"`
}

type FriendsPresenceResponse struct {
	Present []models.PresentFriend `json:"present"`
}

type CountReceivedResponse struct {
	Count int64 `json:"count"`
}

// FriendGraphServer is the internal read API other services use to ask about
// the friendship graph.
type FriendGraphServer interface {
	AreFriends(context.Context, *AreFriendsRequest) (*AreFriendsResponse, error)
	ListFriends(context.Context, *UserRequest) (*ListFriendsResponse, error)
	FriendsPresence(context.Context, *UserRequest) (*FriendsPresenceResponse, error)
	CountReceived(context.Context, *UserRequest) (*CountReceivedResponse, error)
}

type friendGraphServer struct {
	friends  *services.FriendService
	presence *services.PresenceService
}

func NewFriendGraphServer(friends *services.FriendService, presence *services.PresenceService) FriendGraphServer {
	return &friendGraphServer{friends: friends, presence: presence}
}

// NewServer returns a grpc.Server with FriendGraph registered on the JSON codec.
func NewServer(impl FriendGraphServer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ForceServerCodec(jsonCodec{}), grpc.ChainUnaryInterceptor(metricsInterceptor))
	srv := grpc.NewServer(opts...)
	srv.RegisterService(&friendGraphServiceDesc, impl)
	return srv
}

func metricsInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	observability.RecordGRPCRequest(path.Base(info.FullMethod), status.Code(err).String(), time.Since(start))
	return resp, err
}

func StartGRPCServer(ctx context.Context, addr string, impl FriendGraphServer, logger *slog.Logger) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := NewServer(impl)

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("gRPC server error", "error", err)
		}
	}()

	return srv, nil
}

func (s *friendGraphServer) AreFriends(ctx context.Context, req *AreFriendsRequest) (*AreFriendsResponse, error) {
	friends, err := s.friends.AreFriends(ctx, req.UserID, req.FriendID)
	if err != nil {
		return nil, toStatus(err, "failed to check friendship")
	}
	if friends {
		return &AreFriendsResponse{AreFriends: true}, nil
	}
	pending, err := s.friends.HasPendingRequest(ctx, req.UserID, req.FriendID)
	if err != nil {
		return nil, toStatus(err, "failed to check pending request")
	}
	return &AreFriendsResponse{Pending: pending}, nil
}

func (s *friendGraphServer) ListFriends(ctx context.Context, req *UserRequest) (*ListFriendsResponse, error) {
	users, err := s.friends.ListFriends(ctx, req.UserID)
	if err != nil {
		return nil, toStatus(err, "failed to list friends")
	}
	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, users[i].Summary())
	}
	return &ListFriendsResponse{Friends: out}, nil
}

func (s *friendGraphServer) FriendsPresence(ctx context.Context, req *UserRequest) (*FriendsPresenceResponse, error) {
	present, err := s.presence.FriendsCurrentlyPresent(ctx, req.UserID)
	if err != nil {
		return nil, toStatus(err, "failed to load friends presence")
	}
	return &FriendsPresenceResponse{Present: present}, nil
}

func (s *friendGraphServer) CountReceived(ctx context.Context, req *UserRequest) (*CountReceivedResponse, error) {
	count, err := s.friends.CountReceived(ctx, req.UserID)
	if err != nil {
		return nil, toStatus(err, "failed to count requests")
	}
	return &CountReceivedResponse{Count: int64(count)}, nil
}

func toStatus(err error, msg string) error {
	code := codes.Internal
	switch {
	case errors.Is(err, models.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, models.ErrAlreadyFriends), errors.Is(err, models.ErrRequestAlreadyPending):
		code = codes.AlreadyExists
	case errors.Is(err, models.ErrUnauthorized):
		code = codes.PermissionDenied
	case errors.Is(err, models.ErrAlreadyResolved):
		code = codes.FailedPrecondition
	case errors.Is(err, models.ErrSelfRequest):
		code = codes.InvalidArgument
	case errors.Is(err, models.ErrTransient):
		code = codes.Unavailable
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	}
	return status.Errorf(code, "%s: %v", msg, err)
}

var friendGraphServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*FriendGraphServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AreFriends", Handler: unaryHandler("AreFriends", FriendGraphServer.AreFriends)},
		{MethodName: "ListFriends", Handler: unaryHandler("ListFriends", FriendGraphServer.ListFriends)},
		{MethodName: "FriendsPresence", Handler: unaryHandler("FriendsPresence", FriendGraphServer.FriendsPresence)},
		{MethodName: "CountReceived", Handler: unaryHandler("CountReceived", FriendGraphServer.CountReceived)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "friendgraph.v1.json",
}

// unaryHandler adapts a typed FriendGraphServer method to grpc's method handler shape.
func unaryHandler[Req, Resp any](method string, call func(FriendGraphServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + serviceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FriendGraphServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FriendGraphServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
