// Package contenthash provides the content hash used to memoize and
// deduplicate shaders, and an incremental hasher to build one.
//
// Every Append method length-prefixes or tags what it writes, so distinct
// sequences of appends never collide by concatenation ("ab"+"c" vs "a"+"bc").
package contenthash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"math"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"github.com/zclconf/go-cty/cty/msgpack"
)

// Hash is a content digest. The zero Hash means "nothing was hashed".
type Hash [sha256.Size]byte

// String returns the hex encoding of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// Value tags, written before each appended item.
const (
	tagString byte = iota + 1
	tagInt
	tagFloat
	tagBool
	tagHash
	tagValue
)

// Hasher accumulates appended items into a Hash.
type Hasher struct {
	h   hash.Hash
	buf [9]byte
}

// New returns an empty Hasher.
func New() *Hasher {
	return &Hasher{h: sha256.New()}
}

func (hs *Hasher) writeTagged(tag byte, n uint64) {
	hs.buf[0] = tag
	binary.BigEndian.PutUint64(hs.buf[1:], n)
	hs.h.Write(hs.buf[:])
}

// AppendString appends a string.
func (hs *Hasher) AppendString(s string) *Hasher {
	hs.writeTagged(tagString, uint64(len(s)))
	hs.h.Write([]byte(s))
	return hs
}

// AppendInt appends an integer.
func (hs *Hasher) AppendInt(i int64) *Hasher {
	hs.writeTagged(tagInt, uint64(i))
	return hs
}

// AppendFloat appends a float64 by its IEEE-754 bits.
func (hs *Hasher) AppendFloat(f float64) *Hasher {
	hs.writeTagged(tagFloat, math.Float64bits(f))
	return hs
}

// AppendBool appends a boolean.
func (hs *Hasher) AppendBool(b bool) *Hasher {
	var n uint64
	if b {
		n = 1
	}
	hs.writeTagged(tagBool, n)
	return hs
}

// AppendHash appends another hash.
func (hs *Hasher) AppendHash(h Hash) *Hasher {
	hs.writeTagged(tagHash, uint64(len(h)))
	hs.h.Write(h[:])
	return hs
}

// AppendValue appends a cty value together with its type. Unknown values
// cannot be encoded and return an error.
func (hs *Hasher) AppendValue(v cty.Value) error {
	if !v.IsWhollyKnown() {
		return fmt.Errorf("cannot hash unknown value of type %s", v.Type().FriendlyName())
	}
	ty := v.Type()
	typeJSON, err := ctyjson.MarshalType(ty)
	if err != nil {
		return fmt.Errorf("encoding value type %s: %w", ty.FriendlyName(), err)
	}
	data, err := msgpack.Marshal(v, ty)
	if err != nil {
		return fmt.Errorf("encoding value of type %s: %w", ty.FriendlyName(), err)
	}
	hs.writeTagged(tagValue, uint64(len(typeJSON)))
	hs.h.Write(typeJSON)
	hs.writeTagged(tagValue, uint64(len(data)))
	hs.h.Write(data)
	return nil
}

// Sum returns the hash of everything appended so far. The Hasher may keep
// being appended to afterwards.
func (hs *Hasher) Sum() Hash {
	var out Hash
	copy(out[:], hs.h.Sum(nil))
	return out
}
