package auth

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/status"
)

var _ credentials.PerRPCCredentials = (*TokenManager)(nil)

// GetRequestMetadata attaches the current token as a bearer authorization
// header. Failures are reported as gRPC statuses so that the call fails with
// a meaningful code instead of a generic transport error.
func (m *TokenManager) GetRequestMetadata(ctx context.Context, _ ...string) (map[string]string, error) {
	token, err := m.Token(ctx)
	if err != nil {
		return nil, credentialsError(err)
	}
	return map[string]string{common.AuthorizationHeaderName: common.BearerPrefix + token}, nil
}

// RequireTransportSecurity is false so the manager also works over the
// plaintext connections used in development.
func (m *TokenManager) RequireTransportSecurity() bool {
	return false
}

func credentialsError(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	case common.IsFatalCredential(err):
		return status.Error(codes.Unauthenticated, err.Error())
	default:
		return status.Error(codes.Unavailable, err.Error())
	}
}
