// Package command implements the static command table (C7) and the handler
// functions it dispatches to (C8). Handlers are pure functions of the
// arguments following the command name and a mutable store reference; they
// never block and never panic on malformed input, returning an Error frame
// instead.
package command

import (
	"bytes"

	"github.com/akashmaji946/nullkv/internal/resp"
	"github.com/akashmaji946/nullkv/internal/store"
)

// Handler is the signature every command implements: the arguments with the
// command name already removed, plus the store to read or mutate.
type Handler func(args []resp.Frame, st *store.Store) resp.Frame

// Flag is an advisory tag surfaced by COMMAND, not enforced by the
// dispatcher.
type Flag string

const (
	FlagFast     Flag = "fast"
	FlagSentinel Flag = "sentinel"
)

// Tip is a piece of command-level advisory metadata: request/response policy
// or determinism, surfaced verbatim by COMMAND.
type Tip string

const (
	TipRequestPolicyAllShards  Tip = "request_policy:all_shards"
	TipResponsePolicyAllOK     Tip = "response_policy:all_succeeded"
	TipNonDeterministicOutput  Tip = "non_deterministic_output"
	TipNonDeterministicOrder   Tip = "non_deterministic_output_order"
)

// Command is the static record associated with a command name. Only
// Handler is operationally load-bearing; the rest is introspection metadata
// the COMMAND handler assembles into a reply.
type Command struct {
	Name          string
	Handler       Handler
	Arity         int64
	Flags         []Flag
	FirstKey      int64
	LastKey       int64
	Step          int64
	ACLCategories []string
	Tips          []Tip
}

// Table maps a lowercase command name to its record. Lookups lowercase the
// incoming command name before indexing, per the wire protocol's
// case-insensitivity rule.
var Table = map[string]*Command{
	"ping": {
		Name: "ping", Handler: Ping, Arity: 1,
		Flags: []Flag{FlagFast, FlagSentinel}, FirstKey: 0, LastKey: 0, Step: 0,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"echo": {
		Name: "echo", Handler: Echo, Arity: 2,
		Flags: []Flag{FlagFast}, FirstKey: 0, LastKey: 0, Step: 0,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"get": {
		Name: "get", Handler: Get, Arity: 2,
		Flags: []Flag{FlagFast}, FirstKey: 1, LastKey: 1, Step: 1,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"set": {
		Name: "set", Handler: Set, Arity: -3,
		Flags: []Flag{FlagFast}, FirstKey: 1, LastKey: 1, Step: 1,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"incr": {
		Name: "incr", Handler: Incr, Arity: 2,
		Flags: []Flag{FlagFast}, FirstKey: 1, LastKey: 1, Step: 1,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"decr": {
		Name: "decr", Handler: Decr, Arity: 2,
		Flags: []Flag{FlagFast}, FirstKey: 1, LastKey: 1, Step: 1,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"exists": {
		Name: "exists", Handler: Exists, Arity: -2,
		Flags: []Flag{FlagFast}, FirstKey: 1, LastKey: -1, Step: 1,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"del": {
		Name: "del", Handler: Del, Arity: -2,
		Flags: nil, FirstKey: 1, LastKey: -1, Step: 1,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"type": {
		Name: "type", Handler: Type, Arity: 2,
		Flags: []Flag{FlagFast}, FirstKey: 1, LastKey: 1, Step: 1,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"ttl": {
		Name: "ttl", Handler: TTL, Arity: 2,
		Flags: []Flag{FlagFast}, FirstKey: 1, LastKey: 1, Step: 1,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"lpush": {
		Name: "lpush", Handler: Lpush, Arity: -3,
		Flags: []Flag{FlagFast}, FirstKey: 1, LastKey: 1, Step: 1,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"rpush": {
		Name: "rpush", Handler: Rpush, Arity: -3,
		Flags: []Flag{FlagFast}, FirstKey: 1, LastKey: 1, Step: 1,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"llen": {
		Name: "llen", Handler: Llen, Arity: 2,
		Flags: []Flag{FlagFast}, FirstKey: 1, LastKey: 1, Step: 1,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"lrange": {
		Name: "lrange", Handler: Lrange, Arity: 4,
		Flags: nil, FirstKey: 1, LastKey: 1, Step: 1,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
	"command": {
		Name: "command", Arity: -1,
		Flags: []Flag{FlagFast, FlagSentinel}, FirstKey: 0, LastKey: 0, Step: 0,
		ACLCategories: []string{"@connection"},
		Tips:          []Tip{TipRequestPolicyAllShards, TipResponsePolicyAllOK},
	},
}

// init attaches COMMAND's handler once Table exists: CommandIntrospect reads
// Table, so naming it inside the literal would be an initialization cycle.
func init() {
	Table["command"].Handler = CommandIntrospect
}

// Dispatch looks up and invokes the handler for frame, which must be an
// Array of BulkStrings with the command name first. Lookup failures and
// malformed shapes are reported as Error frames, never panics.
func Dispatch(frame resp.Frame, st *store.Store) resp.Frame {
	if frame.Kind != resp.KindArray {
		return resp.Error("ERR Protocol error: expected array of bulk strings")
	}
	if len(frame.Elems) == 0 {
		return resp.Error("ERR Protocol error: empty command array")
	}

	head := frame.Elems[0]
	if head.Kind != resp.KindBulkString {
		return resp.Error("ERR Protocol error: expected array of bulk strings")
	}

	name := bytes.ToLower(head.Bytes)
	cmd, ok := Table[string(name)]
	if !ok {
		return resp.Error("ERR unknown command '" + string(head.Bytes) + "'")
	}

	return cmd.Handler(frame.Elems[1:], st)
}
