package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPath is the prefix of every JSON route.
	APIPath = "/api"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg, db or auth service is nil"
)
