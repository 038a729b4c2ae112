package server

const (
	RouteSignup  = "/signup"
	RouteLogin   = "/login"
	RouteSession = "/session"
)
