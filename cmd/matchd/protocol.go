package main

import (
	"encoding/json"

	"github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/match"
)

// Request asks for a decision.
//
// This same structure arrives via HTTP, websockets, and MQTT.  For
// HTTP, Spec and Decision come from the path.
type Request struct {
	// Id is echoed in the Response.  The service makes one up if
	// it's missing.
	Id string `json:"id,omitempty"`

	Spec     string `json:"spec"`
	Decision string `json:"decision"`

	// Value is the JSON representation that match.ParseValueJSON
	// accepts.
	Value json.RawMessage `json:"value"`

	Props core.Props `json:"props,omitempty"`

	// Trace requests that the Response include traces.
	Trace bool `json:"trace,omitempty"`

	// ReplyTo is an optional MQTT topic for the Response.
	ReplyTo string `json:"replyTo,omitempty"`
}

// Response reports the outcome of a Request.
//
// Not matching is not an error: Result.Matched is false.
type Response struct {
	Id       string        `json:"id"`
	Spec     string        `json:"spec,omitempty"`
	SpecId   string        `json:"specId,omitempty"`
	Decision string        `json:"decision,omitempty"`
	Result   *match.Result `json:"result,omitempty"`
	Traces   *core.Traces  `json:"traces,omitempty"`
	Err      string        `json:"err,omitempty"`
}
