package command

import (
	"github.com/akashmaji946/nullkv/internal/resp"
	"github.com/akashmaji946/nullkv/internal/store"
)

// Exists returns the count of the given keys that are present, counting
// duplicates.
func Exists(args []resp.Frame, st *store.Store) resp.Frame {
	if len(args) < 1 {
		return errWrongArity("exists")
	}

	var total int64
	for _, a := range args {
		if a.Kind != resp.KindBulkString {
			return errNotBulkString
		}
		if st.Exists(string(a.Bytes)) {
			total++
		}
	}
	return resp.Integer(total)
}

// Del deletes each given key and returns how many were actually present.
func Del(args []resp.Frame, st *store.Store) resp.Frame {
	if len(args) < 1 {
		return errWrongArity("del")
	}

	var total int64
	for _, a := range args {
		if a.Kind != resp.KindBulkString {
			return errNotBulkString
		}
		if st.Delete(string(a.Bytes)) {
			total++
		}
	}
	return resp.Integer(total)
}
