package command

import (
	"github.com/akashmaji946/nullkv/internal/resp"
	"github.com/akashmaji946/nullkv/internal/store"
)

// CommandIntrospect implements COMMAND: an array of per-command records
// assembled from the static table, in the shape the wire protocol's
// introspection surface expects.
func CommandIntrospect(args []resp.Frame, st *store.Store) resp.Frame {
	out := make([]resp.Frame, 0, len(Table))
	for _, cmd := range Table {
		out = append(out, describeCommand(cmd))
	}
	return resp.Array(out)
}

func describeCommand(cmd *Command) resp.Frame {
	flags := make([]resp.Frame, len(cmd.Flags))
	for i, f := range cmd.Flags {
		flags[i] = resp.SimpleString([]byte(f))
	}

	acl := make([]resp.Frame, len(cmd.ACLCategories))
	for i, c := range cmd.ACLCategories {
		acl[i] = resp.SimpleString([]byte(c))
	}

	tips := make([]resp.Frame, len(cmd.Tips))
	for i, t := range cmd.Tips {
		tips[i] = resp.SimpleString([]byte(t))
	}

	return resp.Array([]resp.Frame{
		resp.SimpleString([]byte(cmd.Name)),
		resp.Integer(cmd.Arity),
		resp.Array(flags),
		resp.Integer(cmd.FirstKey),
		resp.Integer(cmd.LastKey),
		resp.Integer(cmd.Step),
		resp.Array(acl),
		resp.Array(tips),
		resp.Array(nil), // subcommands: none in this table
	})
}
