package graph

import (
	"github.com/vevey/vevey/internal/common"
)

// resolverError exposes the taxonomy kind of a failed resolver to clients
// as the conventional extensions.code field.
type resolverError struct {
	err error
}

func (e resolverError) Error() string {
	return e.err.Error()
}

func (e resolverError) Unwrap() error {
	return e.err
}

func (e resolverError) Extensions() map[string]interface{} {
	return map[string]interface{}{
		"code": string(common.KindOf(e.err)),
	}
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return resolverError{err: err}
}
