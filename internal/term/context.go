package term

import (
	"hash/fnv"
	"sync/atomic"

	"github.com/cwbudde/irc/internal/diag"
)

// CompileContext owns every term allocated through its Builder: the
// structural-hash intern pool for pure terms, the identity counter for
// effect terms, and the diagnostic collector for this compilation unit
// (spec §5: "owned by the context", "not safe for concurrent mutation").
// Multiple CompileContexts may run in parallel; nothing here is shared
// across contexts.
type CompileContext struct {
	pool     map[uint64][]*Term
	diag     *diag.Context
	seq      uint64
	metatype *Term
}

// NewCompileContext allocates a fresh, empty context with its own intern
// pool and diagnostic collector.
func NewCompileContext() *CompileContext {
	ctx := &CompileContext{
		pool: make(map[uint64][]*Term),
		diag: diag.NewContext(),
	}
	ctx.metatype = &Term{kind: KindMetatype, mode: ModeValue, pure: true, storage: StorageMetatype}
	ctx.metatype.typ = ctx.metatype // the type of the type of types is itself
	return ctx
}

// Diagnostics returns the context's diagnostic collector.
func (c *CompileContext) Diagnostics() *diag.Context { return c.diag }

func (c *CompileContext) nextSeq() uint64 {
	return atomic.AddUint64(&c.seq, 1)
}

// Builder is the single constructor surface for every term subkind (spec
// §4.1), bound to one CompileContext.
type Builder struct {
	ctx *CompileContext
}

// NewBuilder returns a Builder constructing terms in ctx.
func NewBuilder(ctx *CompileContext) *Builder { return &Builder{ctx: ctx} }

// Metatype returns the process-global "type of types" singleton for this
// context.
func (b *Builder) Metatype() *Term { return b.ctx.metatype }

// internPure looks up or inserts a pure term by its structural hash,
// verifying full structural equality on hash collision (hash is only an
// index, never the sole equality test — this preserves "no hash
// collisions in the intern table" as a property of the lookup, not an
// assumption about the hash function).
func (b *Builder) internPure(candidate *Term) *Term {
	h := structuralHash(candidate)
	candidate.hash = h
	bucket := b.ctx.pool[h]
	for _, existing := range bucket {
		if structuralEqual(existing, candidate) {
			return existing
		}
	}
	candidate.seq = b.ctx.nextSeq()
	b.ctx.pool[h] = append(bucket, candidate)
	return candidate
}

// freshIdentity stamps an identity (non-interned) term with a fresh
// sequence number and returns it unmodified otherwise.
func (b *Builder) freshIdentity(t *Term) *Term {
	t.seq = b.ctx.nextSeq()
	return t
}

func mixHash(h uint64, parts ...uint64) uint64 {
	f := fnv.New64a()
	buf := make([]byte, 8*(len(parts)+1))
	putU64(buf[0:8], h)
	for i, p := range parts {
		putU64(buf[8+8*i:16+8*i], p)
	}
	f.Write(buf)
	return f.Sum64()
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func hashString(s string) uint64 {
	f := fnv.New64a()
	f.Write([]byte(s))
	return f.Sum64()
}

func boolHash(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
