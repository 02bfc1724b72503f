package command

import "github.com/akashmaji946/nullkv/internal/resp"

var (
	errNotBulkString = resp.Error("ERR Protocol error: expecting array of bulk strings")
	errSyntax        = resp.Error("ERR syntax error")
	errWrongType     = resp.Error("WRONGTYPE Operation against a key holding the wrong kind of value")
)

func errWrongArity(name string) resp.Frame {
	return resp.Error("ERR wrong number of arguments for '" + name + "' command")
}
