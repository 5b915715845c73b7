package igrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// FriendGraphClient calls the FriendGraph service over the JSON codec. It is
// the client other services import to ask this one about the friendship
// graph; nothing in this binary dials it.
type FriendGraphClient struct {
	conn *grpc.ClientConn
}

func NewFriendGraphClient(addr string, opts ...grpc.DialOption) (*FriendGraphClient, error) {
	if addr == "" {
		return nil, fmt.Errorf("friend graph gRPC address is required")
	}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{})),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial friend graph gRPC: %w", err)
	}
	return &FriendGraphClient{conn: conn}, nil
}

func (c *FriendGraphClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *FriendGraphClient) AreFriends(ctx context.Context, userID, friendID int64) (bool, error) {
	out := new(AreFriendsResponse)
	if err := c.invoke(ctx, "AreFriends", &AreFriendsRequest{UserID: userID, FriendID: friendID}, out); err != nil {
		return false, err
	}
	return out.AreFriends, nil
}

func (c *FriendGraphClient) ListFriends(ctx context.Context, userID int64) (*ListFriendsResponse, error) {
	out := new(ListFriendsResponse)
	if err := c.invoke(ctx, "ListFriends", &UserRequest{UserID: userID}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FriendGraphClient) FriendsPresence(ctx context.Context, userID int64) (*FriendsPresenceResponse, error) {
	out := new(FriendsPresenceResponse)
	if err := c.invoke(ctx, "FriendsPresence", &UserRequest{UserID: userID}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FriendGraphClient) CountReceived(ctx context.Context, userID int64) (int64, error) {
	out := new(CountReceivedResponse)
	if err := c.invoke(ctx, "CountReceived", &UserRequest{UserID: userID}, out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *FriendGraphClient) invoke(ctx context.Context, method string, in, out any) error {
	return c.conn.Invoke(ctx, "/"+serviceName+"/"+method, in, out)
}
