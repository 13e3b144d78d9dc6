// Package domain contains the core business entities and domain logic of
// the gateway: the generation modules, the task record, and its lifecycle
// rules. It is independent of any specific infrastructure or delivery
// mechanism.
package domain
