// Package errors provides the coded, actionable errors the leafwire CLI
// prints.
//
// Library packages return plain Go errors (sentinels and typed errors from
// pkg/session, pkg/protocol and pkg/export). At the command boundary they
// are classified into a *CodedError that carries a stable code, a plain
// language explanation and, where one exists, a hint on how to fix it.
//
// # Error Categories
//
//   - config: the configuration file or flags are unusable
//   - connection: the server could not be reached or refused the session
//   - protocol: the server sent something the client cannot accept
//   - remote: the server reported a failure for one request
//   - export: documents could not be written to the destination
//
// # Error Codes
//
// Codes are grouped by category: E1xx config, E2xx connection, E3xx
// protocol, E4xx remote, E5xx export.
//
// # Usage
//
//	if err := s.Leave(); err != nil {
//	    errors.PrintError(errors.FromSession(err))
//	}
//
//	// ERROR E201: Server refused the session
//	//
//	//   The handshake was rejected with HTTP 403.
//	//
//	//   Hint: Copy a fresh session cookie from the browser into leafwire.json
package errors
