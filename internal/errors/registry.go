package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E101-E199)
	// ============================================

	"E101": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Detail:     "leafwire.json could not be read or is not valid JSON.",
		Suggestion: "Check the file for syntax errors, or delete it and pass --server and --cookie instead",
	},
	"E102": {
		Category:   CategoryConfig,
		Message:    "Server URL missing or invalid",
		Detail:     "The server URL must be an absolute http or https URL.",
		Suggestion: "Set \"server\" in leafwire.json or pass --server https://host",
	},
	"E103": {
		Category:   CategoryConfig,
		Message:    "Session cookie missing",
		Detail:     "The server only accepts authenticated sessions.",
		Suggestion: "Set \"cookie\" in leafwire.json, LEAFWIRE_COOKIE, or pass --cookie",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// ============================================
	// Connection Errors (E201-E299)
	// ============================================

	"E201": {
		Category:   CategoryConnection,
		Message:    "Server refused the session",
		Detail:     "The handshake was rejected. The cookie has probably expired or the project is not shared with this account.",
		Suggestion: "Copy a fresh session cookie from the browser into leafwire.json",
	},
	"E202": {
		Category:   CategoryConnection,
		Message:    "Server unreachable",
		Detail:     "The HTTP handshake could not be completed.",
		Suggestion: "Check the server URL and your network connection",
	},
	"E203": {
		Category: CategoryConnection,
		Message:  "WebSocket upgrade failed",
		Detail:   "The handshake succeeded but the server did not accept the WebSocket connection.",
	},
	"E204": {
		Category: CategoryConnection,
		Message:  "Connection lost",
		Detail:   "The socket failed while the session was running.",
	},

	// ============================================
	// Protocol Errors (E301-E399)
	// ============================================

	"E301": {
		Category: CategoryProtocol,
		Message:  "Protocol violation",
		Detail:   "The server sent a message the client does not understand. The server may run an incompatible version.",
	},
	"E302": {
		Category:   CategoryProtocol,
		Message:    "Request timed out",
		Detail:     "The server did not answer in time.",
		Suggestion: "Raise session.rpcTimeout in leafwire.json for large projects",
	},
	"E303": {
		Category: CategoryProtocol,
		Message:  "Session closed",
		Detail:   "The session ended before the request completed.",
	},

	// ============================================
	// Remote Errors (E401-E499)
	// ============================================

	"E401": {
		Category: CategoryRemote,
		Message:  "Server reported an error",
	},
	"E402": {
		Category:   CategoryRemote,
		Message:    "Document not found",
		Detail:     "No document in the project matches the given id or path.",
		Suggestion: "Run leafwire info to list the documents of the project",
	},

	// ============================================
	// Export Errors (E501-E599)
	// ============================================

	"E501": {
		Category: CategoryExport,
		Message:  "Export failed",
		Detail:   "One or more documents could not be exported.",
	},
	"E502": {
		Category:   CategoryExport,
		Message:    "Export destination unusable",
		Suggestion: "Check export.dir, or the bucket and credentials in export.s3",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
