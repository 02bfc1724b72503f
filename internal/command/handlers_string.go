package command

import (
	"strings"
	"time"

	"github.com/akashmaji946/nullkv/internal/resp"
	"github.com/akashmaji946/nullkv/internal/store"
)

// Ping replies PONG regardless of arguments; a real arity check is left out
// since every arity is accepted by the reference clients that send PING.
func Ping(args []resp.Frame, st *store.Store) resp.Frame {
	return resp.SimpleString([]byte("PONG"))
}

// Echo returns its single bulk-string argument unchanged.
func Echo(args []resp.Frame, st *store.Store) resp.Frame {
	if len(args) != 1 {
		return errWrongArity("echo")
	}
	if args[0].Kind != resp.KindBulkString {
		return errNotBulkString
	}
	return resp.BulkString(args[0].Bytes)
}

// Get returns the string value at key, Null if absent, or a WRONGTYPE error
// if the key holds a list.
func Get(args []resp.Frame, st *store.Store) resp.Frame {
	if len(args) != 1 {
		return errWrongArity("get")
	}
	if args[0].Kind != resp.KindBulkString {
		return errNotBulkString
	}

	entry, ok := st.Get(string(args[0].Bytes))
	if !ok {
		return resp.Null
	}

	sv, err := entry.AsString()
	if err != nil {
		return errWrongType
	}
	return resp.BulkString(sv.ToBytes())
}

// Set implements SET key value [NX|XX] [EX s|PX ms|EXAT t|PXAT t|KEEPTTL]
// [GET]. Options are order-tolerant but each category - existence, expiry,
// GET - may appear at most once; anything else is a syntax error.
func Set(args []resp.Frame, st *store.Store) resp.Frame {
	if len(args) < 2 {
		return errWrongArity("set")
	}
	if args[0].Kind != resp.KindBulkString || args[1].Kind != resp.KindBulkString {
		return errNotBulkString
	}

	key := string(args[0].Bytes)
	value := args[1].Bytes

	expiry := store.NoExpiry()
	existence := store.ExistenceNoCheck
	wantGet := false
	haveExpiryOpt := false
	haveExistenceOpt := false

	rest := args[2:]
	i := 0
	for i < len(rest) {
		cur := rest[i]
		if cur.Kind != resp.KindBulkString {
			return errSyntax
		}
		opt := strings.ToUpper(string(cur.Bytes))

		switch opt {
		case "GET":
			if wantGet {
				return errSyntax
			}
			wantGet = true
			i++

		case "NX":
			if haveExistenceOpt {
				return errSyntax
			}
			haveExistenceOpt = true
			existence = store.ExistenceMustNotExist
			i++

		case "XX":
			if haveExistenceOpt {
				return errSyntax
			}
			haveExistenceOpt = true
			existence = store.ExistenceMustExist
			i++

		case "KEEPTTL":
			if haveExpiryOpt {
				return errSyntax
			}
			haveExpiryOpt = true
			expiry = store.KeepTTL()
			i++

		case "EX", "PX", "EXAT", "PXAT":
			if haveExpiryOpt {
				return errSyntax
			}
			if i+1 >= len(rest) || rest[i+1].Kind != resp.KindBulkString {
				return errSyntax
			}
			n, perr := resp.ParseDecimal(rest[i+1].Bytes)
			if perr != nil {
				return errSyntax
			}

			haveExpiryOpt = true
			var at time.Time
			switch opt {
			case "EX":
				at = time.Now().Add(time.Duration(n) * time.Second)
			case "PX":
				at = time.Now().Add(time.Duration(n) * time.Millisecond)
			case "EXAT":
				at = time.Unix(n, 0).UTC()
			case "PXAT":
				at = time.UnixMilli(n).UTC()
			}
			expiry = store.ExpireAt(at)
			i += 2

		default:
			return errSyntax
		}
	}

	entry, err := st.GetOrInsert(key, expiry, existence)
	if err != nil {
		// Precondition failure (NX/XX): per the source, this is reported as
		// Null rather than a distinct error reply.
		return resp.Null
	}

	if entry.Kind != store.KindNil && entry.Kind != store.KindString {
		return errWrongType
	}

	var previous resp.Frame
	if wantGet {
		if entry.Kind == store.KindNil {
			previous = resp.Null
		} else {
			sv, _ := entry.AsString()
			previous = resp.BulkString(sv.ToBytes())
		}
	}

	entry.SetString(store.StringFromBytes(cloneBytes(value)))

	if wantGet {
		return previous
	}
	return resp.SimpleString([]byte("OK"))
}

// Incr and Decr create the key as integer zero if absent, then apply +1/-1.
func Incr(args []resp.Frame, st *store.Store) resp.Frame { return incrDecr(args, st, 1) }
func Decr(args []resp.Frame, st *store.Store) resp.Frame { return incrDecr(args, st, -1) }

func incrDecr(args []resp.Frame, st *store.Store, delta int64) resp.Frame {
	if len(args) != 1 {
		return errWrongArity("incr/decr")
	}
	if args[0].Kind != resp.KindBulkString {
		return errNotBulkString
	}
	key := string(args[0].Bytes)

	entry, err := st.GetOrInsert(key, store.KeepTTL(), store.ExistenceNoCheck)
	if err != nil {
		return resp.Error("ERR could not retrieve key")
	}

	var sv *store.StringValue
	switch entry.Kind {
	case store.KindNil:
		entry.SetString(store.StringFromInt(0))
		sv, _ = entry.AsString()
	case store.KindString:
		sv, _ = entry.AsString()
	default:
		return errWrongType
	}

	n, ierr := sv.IncrBy(delta)
	if ierr != nil {
		return resp.Error("ERR value is not an integer or out of range")
	}
	return resp.Integer(n)
}

// Type reports the entry's type name, or "none" if the key is absent.
func Type(args []resp.Frame, st *store.Store) resp.Frame {
	if len(args) != 1 {
		return errWrongArity("type")
	}
	entry, ok := st.Get(string(args[0].Bytes))
	if !ok {
		return resp.SimpleString([]byte("none"))
	}
	switch entry.Kind {
	case store.KindString:
		return resp.SimpleString([]byte("string"))
	case store.KindList:
		return resp.SimpleString([]byte("list"))
	default:
		return resp.SimpleString([]byte("none"))
	}
}

// TTL reports seconds remaining before expiry: -1 if the key has none, -2 if
// the key is absent.
func TTL(args []resp.Frame, st *store.Store) resp.Frame {
	if len(args) != 1 {
		return errWrongArity("ttl")
	}
	d, ok := st.TTL(string(args[0].Bytes))
	if !ok {
		return resp.Integer(-2)
	}
	if d < 0 {
		return resp.Integer(-1)
	}
	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return resp.Integer(secs)
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
