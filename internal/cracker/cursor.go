package cracker

import "github.com/mesh-relay/meshcrack/internal/roomname"

// bruteforceResumePoint resolves a brute-force resume cursor: start at
// (len(w), index(w)+1), rolling over to the next length if that overflows
// the length's space.
//
// A malformed cursor degrades to a fresh start rather than an error: if w
// is not a legal room name, resolution falls back to (startingLength, 0).
func bruteforceResumePoint(w string, startingLength, maxLength int) (length int, offset uint64) {
	l, idx, ok := roomname.RoomNameToIndex(w)
	if !ok {
		return startingLength, 0
	}
	length = l
	offset = idx + 1
	for length <= maxLength && offset >= roomname.CountNamesForLength(length) {
		length++
		offset = 0
	}
	if length > maxLength {
		// Already-exhausted cursor: report a length past maxLength so the
		// brute-force loop's range simply does not execute.
		return maxLength + 1, 0
	}
	return length, offset
}

// maxCursorBackscan bounds how far bruteforceCursorName walks backward over
// enumeration gaps before giving up.
const maxCursorBackscan = 4096

// bruteforceCursorName returns the legal candidate name at the highest index
// below offset for the given length, skipping backward over any gaps in the
// enumeration. It is used to build a resume cursor that points strictly
// after the last candidate actually inspected, on both cancellation and
// exhaustion.
func bruteforceCursorName(length int, offset uint64) (string, bool) {
	if offset == 0 {
		return "", false
	}
	limit := offset
	if limit > maxCursorBackscan {
		limit = maxCursorBackscan
	}
	for i := uint64(0); i < limit; i++ {
		idx := offset - 1 - i
		if name, ok := roomname.IndexToRoomName(length, idx); ok {
			return name, true
		}
	}
	return "", false
}
