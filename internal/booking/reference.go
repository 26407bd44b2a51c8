package booking

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// referencePrefix marks booking references as such when a user quotes one
// back in support chat.
const referencePrefix = "BK"

// suffixSpace is 36^8, the number of distinct 8-character base-36 suffixes.
const suffixSpace = 2821109907456

// NewReference generates the display reference for a booking: the prefix,
// the creation instant as base-36 milliseconds, and an 8-character random
// base-36 suffix, all uppercase. A collision requires two bookings in the
// same millisecond to draw the same suffix out of 36^8 — improbable at any
// plausible booking volume, though not impossible.
func NewReference(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	suffix := strconv.FormatUint(rand.Uint64N(suffixSpace), 36)
	if len(suffix) < 8 {
		suffix = strings.Repeat("0", 8-len(suffix)) + suffix
	}
	return referencePrefix + strings.ToUpper(ts+suffix)
}
