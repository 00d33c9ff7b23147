package listener

import "context"

type remoteUserKey struct{}

// WithRemoteUser records the user name a transport authenticated with.
func WithRemoteUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, remoteUserKey{}, user)
}

// RemoteUser returns the user name recorded by the transport, if any.
func RemoteUser(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(remoteUserKey{}).(string)
	return user, ok && user != ""
}
