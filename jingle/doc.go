// Package jingle defines the vocabulary and data model of the session
// negotiation protocol: the closed action and acknowledgment sets, session
// and content states, the request wire shape, and the capability interfaces
// (Application, Transport, SignalLayer) that concrete plugins implement.
//
// The package is pure data and pure functions. The state machines that
// consume it live in the session package, and the per-peer registry with
// tie-break admission lives in the manager package.
package jingle
