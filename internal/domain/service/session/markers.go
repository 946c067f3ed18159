package session

// markers are the ten choice symbols a prompt can carry, indexed 0-9.
// A choice field therefore cannot offer more than nine options; Start
// rejects such forms up front.
var markers = [...]string{"0️⃣", "1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣"}

// ConfirmMarker signals that the user is done selecting options.
const ConfirmMarker = "✅"

// MaxOptions is the largest option count a choice prompt can represent.
const MaxOptions = len(markers) - 1

// MarkerForIndex returns the symbol for a 1-based option index, or ""
// when the index is outside the marker table.
func MarkerForIndex(i int) string {
	if i < 0 || i >= len(markers) {
		return ""
	}
	return markers[i]
}

// IndexForMarker returns the 0-9 value of a marker symbol, or -1 for
// anything that is not a marker.
func IndexForMarker(marker string) int {
	for i, m := range markers {
		if m == marker {
			return i
		}
	}
	return -1
}
