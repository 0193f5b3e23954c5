package dictionary

const bloomSeed2 uint32 = 0xDEADBEEF

// Bloom tests folded prefixes against the dictionary's bloom region.
// False positives are expected and filtered out by the Trie; a false negative
// means the dictionary was compiled incorrectly.
type Bloom struct {
	bits []byte
	mask uint32
}

// NewBloom views the bloom region of s. The region size must be a power of
// two, which the dictionary compiler guarantees.
func NewBloom(s *Store) *Bloom {
	return &Bloom{
		bits: s.buf[s.bloomStart:s.trieStart],
		mask: uint32(s.bloomSize) - 1,
	}
}

// Hashes returns the two filter hashes of key.
func Hashes(key []byte) (h1, h2 uint32) {
	h2 = bloomSeed2
	for _, b := range key {
		h1 = h1*33 + uint32(b)
		h2 = h2*73 ^ uint32(b)
	}
	return h1, h2
}

// BitPosition maps a hash to a byte offset in a filter of mask+1 bytes and a
// bit mask within that byte.
func BitPosition(h, mask uint32) (offset uint32, bit byte) {
	return (h >> 3) & mask, 1 << (h & 7)
}

// ProbablyContains reports whether key may be stored in the trie.
func (bf *Bloom) ProbablyContains(key []byte) bool {
	if len(bf.bits) == 0 {
		return false
	}
	h1, h2 := Hashes(key)
	return bf.test(h1) && bf.test(h2)
}

func (bf *Bloom) test(h uint32) bool {
	off, bit := BitPosition(h, bf.mask)
	return bf.bits[off]&bit != 0
}

// Size returns the filter size in bytes.
func (bf *Bloom) Size() int { return len(bf.bits) }
