// Package dispatch talks to the remote inference backends. Each generation
// module has a dispatcher that knows its backend's call shape: voice design
// posts a structured JSON body, speech synthesis and environment audio post
// multipart bodies that stream a staged upload alongside scalar fields.
// Responses of every shape are interpreted uniformly into a task outcome.
package dispatch
