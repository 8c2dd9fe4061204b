package api

import (
	"github.com/brightops/admin-gateway/internal/api/middleware"
	"github.com/brightops/admin-gateway/internal/core/domain"
)

// PolicyTable declares, in one place, which roles may reach each guarded
// route. The shared Guard middleware consults this table; handlers never
// carry their own allow-lists.
func PolicyTable() middleware.PolicyTable {
	anyStaff := domain.NewAccessPolicy(
		domain.RoleCEO, domain.RoleSales, domain.RoleDeveloper, domain.RoleAdmin, domain.RoleHR,
	)
	userPages := domain.NewAccessPolicy(
		domain.RoleCEO, domain.RoleSales, domain.RoleDeveloper, domain.RoleAdmin, domain.RoleHR,
	)
	productPages := domain.NewAccessPolicy(
		domain.RoleCEO, domain.RoleSales, domain.RoleDeveloper, domain.RoleAdmin,
	)
	adminOnly := domain.NewAccessPolicy(domain.RoleCEO, domain.RoleAdmin)

	return middleware.PolicyTable{
		"/admin/session": anyStaff,
		"/admin/logout":  anyStaff,

		"/admin/users":                   userPages,
		"/admin/users/:id":               adminOnly,
		"/admin/users/forms":             userPages,
		"/admin/users/forms/:fid":        userPages,
		"/admin/users/forms/:fid/fields": userPages,
		"/admin/users/forms/:fid/submit": userPages,

		"/admin/products":     productPages,
		"/admin/products/:id": productPages,

		"/admin/activity": adminOnly,
	}
}
