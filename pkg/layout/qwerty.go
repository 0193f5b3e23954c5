package layout

var qwertyRows = []struct {
	keys   string
	offset float64 // in key widths
}{
	{"qwertyuiop", 0},
	{"asdfghjkl'", 0.5},
	{"zxcvbnm-", 1.5},
}

// QWERTY returns a plain QWERTY geometry with backspace and space keys, used
// when the host has not sent a layout yet.
func QWERTY(keyWidth, keyHeight float64) Params {
	var keys []KeyGeometry
	for row, r := range qwertyRows {
		y := float64(row) * keyHeight
		for i, c := range r.keys {
			keys = append(keys, KeyGeometry{
				Code:   int(c),
				X:      (r.offset + float64(i)) * keyWidth,
				Y:      y,
				Width:  keyWidth,
				Height: keyHeight,
			})
		}
	}

	bottom := float64(len(qwertyRows)) * keyHeight
	keys = append(keys,
		KeyGeometry{Code: Backspace, X: 8.5 * keyWidth, Y: 2 * keyHeight, Width: 1.5 * keyWidth, Height: keyHeight},
		KeyGeometry{Code: Space, X: 2 * keyWidth, Y: bottom, Width: 6 * keyWidth, Height: keyHeight},
	)
	return Params{KeyWidth: keyWidth, KeyHeight: keyHeight, Keys: keys}
}
