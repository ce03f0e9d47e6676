package main

import (
	"context"
	"crypto/x509"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// A client is known by the trust domain of the first spiffe:// URI SAN of
// its leaf certificate: spiffe://client1/anything is "client1".

var (
	errUnauthenticated = status.Error(codes.Unauthenticated, "client must have SPIFFE ID")
	errForbidden       = status.Error(codes.PermissionDenied, "only the original owner can access the process")
)

type clientKey struct{}

func withClient(ctx context.Context, client string) context.Context {
	return context.WithValue(ctx, clientKey{}, client)
}

func clientFrom(ctx context.Context) (string, bool) {
	client, ok := ctx.Value(clientKey{}).(string)
	return client, ok && client != ""
}

func spiffeTrustDomain(cert *x509.Certificate) (string, bool) {
	if cert == nil {
		return "", false
	}
	for _, uri := range cert.URIs {
		if uri != nil && uri.Scheme == "spiffe" && uri.Host != "" {
			return uri.Host, true
		}
	}
	return "", false
}

func peerClient(ctx context.Context) (string, bool) {
	p, ok := peer.FromContext(ctx)
	if !ok || p == nil {
		return "", false
	}
	ti, ok := p.AuthInfo.(credentials.TLSInfo)
	if !ok || len(ti.State.PeerCertificates) == 0 {
		return "", false
	}
	return spiffeTrustDomain(ti.State.PeerCertificates[0])
}

// authenticate returns ctx carrying the client name, taken from ctx itself
// or from the peer certificate.
func authenticate(ctx context.Context) (context.Context, error) {
	if _, ok := clientFrom(ctx); ok {
		return ctx, nil
	}
	client, ok := peerClient(ctx)
	if !ok {
		return nil, errUnauthenticated
	}
	return withClient(ctx, client), nil
}

func authUnary(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, err := authenticate(ctx)
	if err != nil {
		return nil, err
	}
	return handler(ctx, req)
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context { return s.ctx }

func authStream(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx, err := authenticate(ss.Context())
	if err != nil {
		return err
	}
	return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
}

// owners remembers which client started which process.
type owners struct {
	mu   sync.RWMutex
	byID map[string]string
}

func newOwners() *owners {
	return &owners{byID: make(map[string]string)}
}

func (o *owners) set(id, client string) {
	o.mu.Lock()
	o.byID[id] = client
	o.mu.Unlock()
}

// check lets only the client that started a process touch it. Unknown
// identifiers are forbidden too, so they cannot be probed.
func (o *owners) check(ctx context.Context, id string) error {
	client, ok := clientFrom(ctx)
	if !ok {
		return errUnauthenticated
	}
	o.mu.RLock()
	owner, known := o.byID[id]
	o.mu.RUnlock()
	if !known || owner != client {
		return errForbidden
	}
	return nil
}
