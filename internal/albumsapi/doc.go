// Package albumsapi is an in-memory albums HTTP API with the routes and
// response shapes of the albums back end: errors come back as
// {"errors": "..."} and confirmations as {"message": "..."}.
//
// It backs the client tests and the mock-server command.
package albumsapi
