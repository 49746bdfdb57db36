package ds

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Built-in Value Type: Bytes
// --------------------------------------------------------------------------

// Bytes is a byte-slice value type implementing the Value contract. It is
// the value type used by the CLI and the conformance test suite.
//
// Bytes encodes to JSON as an array of numbers (e.g. [6,7,8]) instead of the
// base64 string encoding/json would produce for a plain []byte. This keeps
// the persisted file human-readable and diffable.
type Bytes []byte

// Clone returns a deep copy of the byte slice.
func (b Bytes) Clone() Bytes {
	if b == nil {
		return nil
	}
	c := make(Bytes, len(b))
	copy(c, b)
	return c
}

// Compare orders byte slices lexicographically.
func (b Bytes) Compare(other Bytes) int {
	return bytes.Compare(b, other)
}

// MarshalJSON encodes the bytes as a JSON array of numbers.
func (b Bytes) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("[]"), nil
	}
	nums := make([]uint16, len(b))
	for i, v := range b {
		nums[i] = uint16(v)
	}
	return json.Marshal(nums)
}

// UnmarshalJSON decodes a JSON array of numbers in the range 0..255.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return err
	}
	decoded := make(Bytes, len(nums))
	for i, v := range nums {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte value %d at index %d out of range", v, i)
		}
		decoded[i] = byte(v)
	}
	*b = decoded
	return nil
}

func (b Bytes) String() string {
	return string(b)
}
