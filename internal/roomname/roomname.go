// Package roomname implements the bijection between non-negative integers
// and legal room-name strings, the enumerator that underpins both the
// brute-force executor and resume cursors.
//
// Alphabet:
//
//	boundary glyphs (36): a-z, 0-9 -- legal at the first and last position
//	interior glyphs (37): boundary + '-' -- legal in the middle
//
// Length-1 names use only boundary glyphs. Longer names use boundary glyphs
// at both ends and interior glyphs in between, with no two adjacent '-'.
package roomname

import "strings"

const boundaryAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
const interiorAlphabet = boundaryAlphabet + "-"

const (
	boundarySize = 36
	interiorSize = 37
	dash         = '-'
)

var boundaryIndex [256]int8
var interiorIndex [256]int8

func init() {
	for i := range boundaryIndex {
		boundaryIndex[i] = -1
		interiorIndex[i] = -1
	}
	for i, c := range boundaryAlphabet {
		boundaryIndex[byte(c)] = int8(i)
	}
	for i, c := range interiorAlphabet {
		interiorIndex[byte(c)] = int8(i)
	}
}

// bases returns the mixed-radix digit bases for a name of length L, most
// significant digit first: [36] for L==1, [36, 37, ..., 37, 36] for L>=2.
func bases(length int) []uint64 {
	b := make([]uint64, length)
	if length == 1 {
		b[0] = boundarySize
		return b
	}
	b[0] = boundarySize
	for i := 1; i < length-1; i++ {
		b[i] = interiorSize
	}
	b[length-1] = boundarySize
	return b
}

// CountNamesForLength returns the total space enumerated for brute force at
// the given length, using the simple-product convention:
// N_1 = 36, and for L >= 2, N_L = 36 * 37^(L-2) * 36. This overcounts the
// true number of legal names (it includes indices that decode to strings
// containing "--" or decode past the name-defining grammar), which
// IndexToRoomName reports as gaps via its boolean return. countNamesForLength
// and IndexToRoomName must and do share this convention.
func CountNamesForLength(length int) uint64 {
	if length <= 0 {
		return 0
	}
	if length == 1 {
		return boundarySize
	}
	total := uint64(boundarySize) * uint64(boundarySize)
	for i := 0; i < length-2; i++ {
		total *= interiorSize
	}
	return total
}

// IndexToRoomName decodes index i (0 <= i < CountNamesForLength(length)) into
// a room name via mixed-radix decoding. It returns ok=false when i is out of
// range or the decoded string is not a legal room name (contains "--"); the
// caller is expected to treat this as a skipped gap in the index space, not
// an error.
func IndexToRoomName(length int, i uint64) (name string, ok bool) {
	if length <= 0 {
		return "", false
	}
	total := CountNamesForLength(length)
	if i >= total {
		return "", false
	}

	b := bases(length)
	digits := make([]int, length)
	x := i
	for pos := length - 1; pos >= 0; pos-- {
		digits[pos] = int(x % b[pos])
		x /= b[pos]
	}

	buf := make([]byte, length)
	buf[0] = boundaryAlphabet[digits[0]]
	if length > 1 {
		buf[length-1] = boundaryAlphabet[digits[length-1]]
		for pos := 1; pos < length-1; pos++ {
			buf[pos] = interiorAlphabet[digits[pos]]
		}
	}
	name = string(buf)

	if strings.Contains(name, "--") {
		return "", false
	}
	return name, true
}

// RoomNameToIndex is the inverse of IndexToRoomName: it returns the length
// and mixed-radix index of name, or ok=false if name is not a legal room
// name (empty, contains '-' at either end, contains "--", or contains a
// glyph outside the alphabet).
func RoomNameToIndex(name string) (length int, index uint64, ok bool) {
	if !IsLegal(name) {
		return 0, 0, false
	}
	length = len(name)
	b := bases(length)

	digits := make([]int, length)
	digits[0] = int(boundaryIndex[name[0]])
	if length > 1 {
		digits[length-1] = int(boundaryIndex[name[length-1]])
		for pos := 1; pos < length-1; pos++ {
			digits[pos] = int(interiorIndex[name[pos]])
		}
	}

	var x uint64
	for pos := 0; pos < length; pos++ {
		x = x*b[pos] + uint64(digits[pos])
	}
	return length, x, true
}

// IsLegal reports whether name satisfies the room-name grammar: 1 or more
// characters drawn from the alphabet, no leading or trailing '-', and no two
// adjacent '-'.
func IsLegal(name string) bool {
	if len(name) == 0 {
		return false
	}
	if name[0] == dash || name[len(name)-1] == dash {
		return false
	}
	if strings.Contains(name, "--") {
		return false
	}
	if boundaryIndex[name[0]] < 0 || boundaryIndex[name[len(name)-1]] < 0 {
		return false
	}
	for i := 1; i < len(name)-1; i++ {
		if interiorIndex[name[i]] < 0 {
			return false
		}
	}
	return true
}
