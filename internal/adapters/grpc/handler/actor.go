package handler

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// 認証は前段で行われ、確認済みの操作者がメタデータで渡されます。
const (
	ActorIDHeader   = "x-actor-id"
	ActorTierHeader = "x-actor-tier"
)

// Actor は RPC を呼び出したユーザーです。
type Actor struct {
	UserID string
	Tier   string
}

type actorContextKey struct{}

// WithActor は ctx に操作者を設定します。
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, a)
}

// ActorFromContext は ctx の操作者を返します。
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorContextKey{}).(Actor)
	return a, ok
}

// ActorFromMetadata は受信メタデータから操作者を読み取ります。ID と区分がそろわない場合は false です。
func ActorFromMetadata(md metadata.MD) (Actor, bool) {
	a := Actor{
		UserID: firstValue(md, ActorIDHeader),
		Tier:   strings.ToLower(firstValue(md, ActorTierHeader)),
	}
	if a.UserID == "" || a.Tier == "" {
		return Actor{}, false
	}
	return a, true
}

func firstValue(md metadata.MD, key string) string {
	values := md.Get(key)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

// ActorInterceptor はメタデータの操作者をコンテキストに載せるインターセプターです。
// 操作者がいない場合もそのまま呼び出し、判定は各ハンドラーに任せます。
func ActorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if a, ok := ActorFromMetadata(md); ok {
				ctx = WithActor(ctx, a)
			}
		}
		return handler(ctx, req)
	}
}

// ActorMetadata はクライアントから操作者を送るための送信メタデータを付与します。
func ActorMetadata(ctx context.Context, a Actor) context.Context {
	return metadata.AppendToOutgoingContext(ctx, ActorIDHeader, a.UserID, ActorTierHeader, a.Tier)
}
