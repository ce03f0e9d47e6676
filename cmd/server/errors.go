package main

import (
	"errors"
	"os"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SanjoDeundiak/childproc/pkg/lib"
)

// toStatus maps library errors onto gRPC codes.
func toStatus(err error, msg string) error {
	code := codes.Internal
	switch {
	case errors.Is(err, lib.ErrLaunch):
		code = codes.Aborted
	case errors.Is(err, os.ErrNotExist), errors.Is(err, lib.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, lib.ErrAccessDenied), errors.Is(err, os.ErrPermission):
		code = codes.PermissionDenied
	case errors.Is(err, lib.ErrParse):
		code = codes.DataLoss
	case errors.Is(err, lib.ErrConflict), errors.Is(err, lib.ErrInvalid):
		code = codes.InvalidArgument
	case errors.Is(err, lib.ErrUnsupported):
		code = codes.Unimplemented
	}
	return status.Errorf(code, "%s: %v", msg, err)
}
