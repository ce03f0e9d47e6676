package main

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
	"github.com/SanjoDeundiak/childproc/pkg/lib/runner"
)

// GRPCServer encapsulates the mTLS configuration, the gRPC server and its
// listener.
type GRPCServer struct {
	lis     net.Listener
	s       *grpc.Server
	service *ProcessRunnerServiceServer
}

// NewGRPCServer constructs a gRPC server that requires client certificates
// and registers the process runner service on it.
func NewGRPCServer(cfg *Config) (*GRPCServer, error) {
	cert, err := tls.X509KeyPair(cfg.TLS.certPEM, cfg.TLS.keyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to load server key pair: %w", err)
	}

	caPool := x509.NewCertPool()
	if ok := caPool.AppendCertsFromPEM(cfg.TLS.caPEM); !ok {
		return nil, fmt.Errorf("failed to append CA certificate to pool")
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caPool,
		ClientCAs:    caPool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS13,
	}

	service, err := NewProcessRunnerServiceServer(runner.WithLimits(cfg.Cgroup))
	if err != nil {
		return nil, fmt.Errorf("failed to create service server: %w", err)
	}

	lis, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		_ = service.Close()
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	s := grpc.NewServer(
		grpc.Creds(credentials.NewTLS(tlsConfig)),
		grpc.UnaryInterceptor(authUnary),
		grpc.StreamInterceptor(authStream),
	)
	apiv1.RegisterProcessRunnerServiceServer(s, service)

	return &GRPCServer{lis: lis, s: s, service: service}, nil
}

// Serve starts serving gRPC on the configured listener.
func (g *GRPCServer) Serve() error {
	return g.s.Serve(g.lis)
}

// Addr returns the network address the server is bound to.
func (g *GRPCServer) Addr() net.Addr { return g.lis.Addr() }

// Stop gracefully stops the gRPC server, then kills the processes that are
// still running.
func (g *GRPCServer) Stop() {
	g.s.GracefulStop()
	_ = g.service.Close()
}
