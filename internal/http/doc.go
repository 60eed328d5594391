// Package http provides HTTP handlers and middleware for the planner API.
//
// The router exposes the following endpoints:
//   - GET /groups, POST /groups, GET /groups/{id}, DELETE /groups/{id}: calendar
//     group management exchanging the `groupDTO` payload defined in
//     group_handler.go.
//   - POST /groups/{id}/members, DELETE /groups/{id}/members/{memberID}: roster
//     management for a group.
//   - POST /groups/{id}/slots, DELETE /groups/{id}/slots/{slotID}: weekly
//     availability slots for group members. Slot times are "HH:MM" strings.
//   - GET /groups/{id}/schedule?date=YYYY-MM-DD: the shared schedule of a group
//     for one date, with common free slots, conflicts, and suggestions.
//   - GET /users/{id}/week?start=YYYY-MM-DD: the aggregated week view of one
//     student, merged from assignments, exams, classes, holidays, and any
//     configured external calendars.
//   - POST /users/{id}/assignments, POST /users/{id}/exams,
//     POST /users/{id}/sessions: planner entries the week view reads back.
//   - POST /holidays: campus-wide holidays, upserted by date.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
