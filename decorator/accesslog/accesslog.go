// Package accesslog implements an audit-log decorator: it logs one
// structured entry per request, carrying method, path, status, and
// the auth outcome left in the state bag by an upstream auth
// decorator (AuthUserKey / AuthRejectReasonKey). Unlike the filter it
// is grounded on, it does not tee the request body — body capture is
// an aggregation concern (component H), not a logging one.
package accesslog

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/coreway/httpcore/decorator"
)

const Name = "accessLog"

// AuthUserKey and AuthRejectReasonKey are the state bag keys an auth
// decorator sets so accesslog can report the outcome without the two
// packages depending on each other's types.
const (
	AuthUserKey         = "auth-user"
	AuthRejectReasonKey = "auth-reject-reason"
)

var ErrUnexpectedConfig = errors.New("accesslog: takes no arguments")

type spec struct {
	logger *logrus.Entry
}

func NewSpec(logger *logrus.Entry) decorator.Spec {
	return &spec{logger: logger}
}

func (s *spec) Name() string { return Name }

func (s *spec) CreateDecorator(config []interface{}) (decorator.Decorator, error) {
	if len(config) != 0 {
		return nil, ErrUnexpectedConfig
	}
	return &auditLog{logger: s.logger}, nil
}

type auditLog struct {
	logger *logrus.Entry
}

func (*auditLog) Request(decorator.Context) {}

func (al *auditLog) Response(ctx decorator.Context) {
	req := ctx.Request()
	resp := ctx.Response()

	entry := al.logger.WithFields(logrus.Fields{
		"request_id": ctx.RequestID(),
		"method":     req.Method,
		"path":       req.URL.Path,
	})
	if resp != nil {
		entry = entry.WithField("status", resp.StatusCode)
	}

	sb := ctx.StateBag()
	user, _ := sb[AuthUserKey].(string)
	reason, _ := sb[AuthRejectReasonKey].(string)
	if user != "" {
		entry = entry.WithField("auth_user", user)
	}
	if reason != "" {
		entry = entry.WithFields(logrus.Fields{"auth_rejected": true, "auth_reject_reason": reason})
	}

	entry.Info("request served")
}
