// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - POST /sessions: exchanges a Google ID token for a session. Body:
//     {"id_token"}. Response: {"token","expires_at","user"} with the token also
//     surfaced via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie. Returns 204 No Content
//     and clears the cookie.
//   - GET /bookings, POST /bookings, GET /bookings/{id}, PUT /bookings/{id},
//     DELETE /bookings/{id}: booking endpoints exchanging the `bookingDTO`
//     payload defined in booking_handler.go. Any authenticated principal may
//     create bookings; slot collisions answer 409 with BOOKING_SLOT_TAKEN.
//   - GET /rooms, POST /rooms, PUT /rooms/{id}, PUT /rooms/{id}/active: room
//     catalog endpoints exchanging the `roomDTO` payload defined in
//     room_handler.go. Listing is available to any authenticated principal
//     while mutations require admin privileges.
//   - GET /users, GET /users/{id}, PUT /users/{id}/role, PUT /users/{id}/status:
//     administrator controlled account endpoints exchanging the `userDTO`
//     payload defined in user_handler.go.
//   - GET /schedule, GET /schedule/ws: the daily grid projection and its
//     websocket feed pushing a fresh grid whenever rooms or bookings change.
//   - GET /monitor, GET /monitor/ws: the credential-less occupancy snapshot for
//     hallway displays, with a websocket feed driven by booking changes and a
//     minute ticker.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
