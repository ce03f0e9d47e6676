package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"

	apiv1 "github.com/SanjoDeundiak/childproc/api/v1"
)

const defaultAddress = "localhost:50051"

// remote reaches the process runner server. TLS material comes from
// PRN_TLS_KEY, PRN_TLS_CERT and PRN_CA_TLS_CERT holding PEM text, or from
// the same names suffixed with _FILE holding paths.
type remote struct {
	address string
	getenv  func(string) string
}

func newRemote(getenv func(string) string) *remote {
	addr := strings.TrimSpace(getenv("PRN_ADDRESS"))
	if addr == "" {
		addr = defaultAddress
	}
	return &remote{address: addr, getenv: getenv}
}

func (r *remote) pem(name string) ([]byte, error) {
	if v := r.getenv(name); strings.TrimSpace(v) != "" {
		return []byte(v), nil
	}
	path := strings.TrimSpace(r.getenv(name + "_FILE"))
	if path == "" {
		return nil, fmt.Errorf("missing %s or %s_FILE", name, name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s_FILE: %w", name, err)
	}
	return data, nil
}

func (r *remote) credentials() (credentials.TransportCredentials, error) {
	var (
		material [3][]byte
		errs     []error
	)
	for i, name := range []string{"PRN_TLS_KEY", "PRN_TLS_CERT", "PRN_CA_TLS_CERT"} {
		var err error
		material[i], err = r.pem(name)
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	cert, err := tls.X509KeyPair(material[1], material[0])
	if err != nil {
		return nil, fmt.Errorf("parse client key pair: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(material[2]) {
		return nil, errors.New("parse CA certificate")
	}
	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS13,
	}), nil
}

// call runs fn against the service with a deadline of timeout; zero means
// no deadline beyond the command's context.
func (r *remote) call(cmd *cobra.Command, timeout time.Duration, fn func(context.Context, apiv1.ProcessRunnerServiceClient) error) error {
	creds, err := r.credentials()
	if err != nil {
		return err
	}
	conn, err := grpc.NewClient(r.address, grpc.WithTransportCredentials(creds))
	if err != nil {
		return fmt.Errorf("connect %s: %w", r.address, err)
	}
	defer conn.Close()

	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx, apiv1.NewProcessRunnerServiceClient(conn))
}

// forbidden reports a PermissionDenied error as a message on stderr and
// swallows it. Other errors are returned as is.
func forbidden(cmd *cobra.Command, err error, action string) error {
	if status.Code(err) != codes.PermissionDenied {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Forbidden. Only the creator of the process can %s.\n", action)
	return nil
}
