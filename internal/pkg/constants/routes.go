package constants

// Route paths shared between router and controllers
const (
	RouteRegister       = "/register"
	RouteConfirmEmail   = "/confirm-email"
	RouteLogin          = "/login"
	RouteLogout         = "/logout"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/reset-password"
	RouteChangePassword = "/user/change-password"

	RouteOAuthBegin    = "/auth/:provider"
	RouteOAuthCallback = "/auth/:provider/callback"

	RouteBrands      = "/api/v1/brands"
	RouteBrandDetail = "/api/v1/brands/:uuid"

	RouteAdminUsers      = "/admin/users"
	RouteAdminUserDetail = "/admin/users/:id"
)
