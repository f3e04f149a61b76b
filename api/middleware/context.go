package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/pkg/enums"
)

type contextKey string

const (
	ctxCompanyID contextKey = "company_id"
	ctxAdminID   contextKey = "admin_id"
	ctxAdminRole contextKey = "admin_role"
	ctxAccessID  contextKey = "access_id"
)

// CompanyIDFromContext returns the authenticated storefront company, or Nil.
func CompanyIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxCompanyID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// AdminIDFromContext returns the authenticated admin. Admin principals carry
// no company id; the two identities never mix in one request.
func AdminIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxAdminID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func AdminRoleFromContext(ctx context.Context) enums.AdminRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAdminRole).(enums.AdminRole); ok {
		return v
	}
	return ""
}

// AccessIDFromContext returns the jti of the presented bearer token.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithCompanyID injects the company identifier, used by controller tests.
func WithCompanyID(ctx context.Context, companyID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCompanyID, companyID)
}

// WithAdminPrincipal injects the admin identity, used by controller tests.
func WithAdminPrincipal(ctx context.Context, adminID uuid.UUID, role enums.AdminRole) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxAdminID, adminID)
	return context.WithValue(ctx, ctxAdminRole, role)
}
