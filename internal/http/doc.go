// Package http provides HTTP handlers and middleware for the front-desk
// console API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a staff session token. Body: {"email","password"}.
//     Response: {"token","expires_at","staff_id","display_name"} with the token
//     also surfaced via the `X-Session-Token` header and a `session_token`
//     cookie.
//   - DELETE /sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie. Returns 204 No Content
//     and clears the cookie.
//   - GET /chart: renders the loaded tape chart as rows of per-room cells plus
//     the reservations in range. Optional `from`/`to` query parameters
//     (YYYY-MM-DD, half-open) reload the window first.
//   - GET /chart/suggestions: ranks alternative rooms for a reservation.
//     Query: `reservation_id` (required), `limit`, `preferred_floor`,
//     `full_stay`.
//   - POST /operations: starts a drag gesture for one or more reservations.
//   - POST /operations/{id}/hover: validates the current pointer targets
//     without committing, returning per-member conflicts.
//   - POST /operations/{id}/drop: validates and commits the gesture. Conflicts
//     return 409 with an ASSIGNMENT_CONFLICT payload; backend failures return
//     502 with a COMMIT_FAILED payload carrying the partial result.
//   - POST /operations/{id}/abort: cancels the gesture.
//   - POST /operations/undo: reverses the most recently committed operation.
//   - PUT /rooms/{id}/status: changes a room's lifecycle status. Body:
//     {"status","reason"}.
//   - GET /ws: upgrades to a WebSocket that streams conflict, commit, and undo
//     events to every connected console.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
