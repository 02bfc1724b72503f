package command

import (
	"github.com/akashmaji946/nullkv/internal/resp"
	"github.com/akashmaji946/nullkv/internal/store"
)

// Lpush pushes each value to the head of the list at key, in argument
// order, creating the list if the key is absent. Returns the new length.
func Lpush(args []resp.Frame, st *store.Store) resp.Frame { return push(args, st, true) }

// Rpush is Lpush's tail-side counterpart.
func Rpush(args []resp.Frame, st *store.Store) resp.Frame { return push(args, st, false) }

func push(args []resp.Frame, st *store.Store, front bool) resp.Frame {
	if len(args) < 2 {
		return errWrongArity("lpush/rpush")
	}
	if args[0].Kind != resp.KindBulkString {
		return errNotBulkString
	}
	key := string(args[0].Bytes)

	entry, err := st.GetOrInsert(key, store.KeepTTL(), store.ExistenceNoCheck)
	if err != nil {
		return resp.Error("ERR could not retrieve key")
	}

	var lv *store.ListValue
	switch entry.Kind {
	case store.KindNil:
		lv = store.NewList()
		entry.SetList(lv)
	case store.KindList:
		lv, _ = entry.AsList()
	default:
		return errWrongType
	}

	for _, v := range args[1:] {
		if v.Kind != resp.KindBulkString {
			return errNotBulkString
		}
		if front {
			lv.PushFront(cloneBytes(v.Bytes))
		} else {
			lv.PushBack(cloneBytes(v.Bytes))
		}
	}

	return resp.Integer(int64(lv.Len()))
}

// Llen returns the list length at key, 0 if absent, or a WRONGTYPE error if
// the key holds a string.
func Llen(args []resp.Frame, st *store.Store) resp.Frame {
	if len(args) != 1 {
		return errWrongArity("llen")
	}
	entry, ok := st.Get(string(args[0].Bytes))
	if !ok {
		return resp.Integer(0)
	}
	if entry.Kind == store.KindNil {
		return resp.Integer(0)
	}
	lv, err := entry.AsList()
	if err != nil {
		return errWrongType
	}
	return resp.Integer(int64(lv.Len()))
}

// Lrange returns the inclusive slice [start, stop] of the list at key, with
// Python-style negative indices counting from the tail, clamped to bounds.
func Lrange(args []resp.Frame, st *store.Store) resp.Frame {
	if len(args) != 3 {
		return errWrongArity("lrange")
	}
	for _, a := range args {
		if a.Kind != resp.KindBulkString {
			return errNotBulkString
		}
	}

	start, err := resp.ParseDecimal(args[1].Bytes)
	if err != nil {
		return errSyntax
	}
	stop, err := resp.ParseDecimal(args[2].Bytes)
	if err != nil {
		return errSyntax
	}

	entry, ok := st.Get(string(args[0].Bytes))
	if !ok || entry.Kind == store.KindNil {
		return resp.Array(nil)
	}
	lv, aerr := entry.AsList()
	if aerr != nil {
		return errWrongType
	}

	elems := lv.Slice()
	n := int64(len(elems))

	start = clampIndex(start, n)
	stop = clampIndex(stop, n)

	if start > stop || start >= n {
		return resp.Array(nil)
	}
	if stop >= n {
		stop = n - 1
	}

	out := make([]resp.Frame, 0, stop-start+1)
	for i := start; i <= stop; i++ {
		out = append(out, resp.BulkString(elems[i]))
	}
	return resp.Array(out)
}

func clampIndex(i, n int64) int64 {
	if i < 0 {
		i += n
	}
	if i < 0 {
		i = 0
	}
	return i
}
