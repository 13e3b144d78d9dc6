// Package api handles incoming HTTP requests, request validation, and
// response formatting. It acts as an adapter between external clients and
// the task scheduling core: submissions become queued task records, queries
// return record snapshots, and downloads stream retained artifacts.
package api
