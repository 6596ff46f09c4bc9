package neo4j

import (
	"context"
	"errors"
	"strings"

	pkgerrors "biolink-gateway/pkg/errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const serviceName = "neo4j"

// translateError maps driver failures onto the application error taxonomy
func translateError(op string, err error) error {
	if err == nil || pkgerrors.IsAppError(err) {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), isTimeoutCode(err):
		return pkgerrors.NewTimeoutError(serviceName + " " + op).WithCause(err)
	case errors.Is(err, context.Canceled):
		return pkgerrors.NewCanceledError(serviceName + " " + op).WithCause(err)
	case neo4j.IsConnectivityError(err):
		return pkgerrors.NewUnavailableError(serviceName).WithCause(err)
	default:
		return pkgerrors.NewExternalError(serviceName, err).WithCode(op)
	}
}

func isTimeoutCode(err error) bool {
	var dbErr *neo4j.Neo4jError
	if !errors.As(err, &dbErr) {
		return false
	}
	return strings.Contains(dbErr.Code, "TransactionTimedOut")
}
