package usps

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/codes"
)

// operation is one fetch-and-parse of a portal page using the given session.
type operation[T any] func(ctx context.Context, s *Session) (T, error)

// authenticated runs op, and if the portal says the session expired, logs in
// and runs op once more. A second expiry is returned as an *AuthError, there
// is no further retry.
func authenticated[T any](ctx context.Context, s *Session, name string, op operation[T]) (T, error) {
	ctx, span := tracer.Start(ctx, "session:"+name)
	defer span.End()

	var zero T
	out, err := op(ctx, s)
	if !errors.Is(err, errSessionExpired) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "operation failed")
		}
		return out, err
	}

	s.tel.ReportDebug("session expired, logging in again", name)
	err = s.Login(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "re-login failed")
		return zero, err
	}

	out, err = op(ctx, s)
	if errors.Is(err, errSessionExpired) {
		err = &AuthError{Reason: "session rejected right after login", Err: err}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed after re-login")
		return zero, err
	}
	return out, nil
}
