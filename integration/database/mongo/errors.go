package mongo

import "errors"

var (
	// ErrFailedToConnectToMongo is returned when all connection attempts
	// are exhausted.
	ErrFailedToConnectToMongo = errors.New("failed to connect to mongo")

	// ErrHealthcheckFailed is returned when the health check ping fails.
	ErrHealthcheckFailed = errors.New("healthcheck failed, connection is not available")
)
