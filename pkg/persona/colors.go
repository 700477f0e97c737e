package persona

import "unicode/utf16"

// SecondaryColor is shared by every generated color scheme.
const SecondaryColor = "from-blue-500 to-cyan-500"

var palette = []struct {
	primary string
	accent  string
}{
	{"from-blue-500 to-purple-500", "blue-400"},
	{"from-green-500 to-teal-500", "green-400"},
	{"from-orange-500 to-red-500", "orange-400"},
	{"from-purple-500 to-pink-500", "purple-400"},
	{"from-indigo-500 to-blue-500", "indigo-400"},
	{"from-emerald-500 to-green-500", "emerald-400"},
	{"from-rose-500 to-pink-500", "rose-400"},
	{"from-cyan-500 to-blue-500", "cyan-400"},
	{"from-violet-500 to-purple-500", "violet-400"},
	{"from-amber-500 to-orange-500", "amber-400"},
}

// NameHash is the 32-bit polynomial hash (h = h*31 + unit) over the UTF-16
// code units of name.
func NameHash(name string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(name)) {
		h = h*31 + int32(u)
	}
	return h
}

// SchemeForName deterministically picks a palette entry for name.
func SchemeForName(name string) ColorScheme {
	h := int64(NameHash(name))
	if h < 0 {
		h = -h
	}
	entry := palette[h%int64(len(palette))]
	return ColorScheme{
		Primary:   entry.primary,
		Secondary: SecondaryColor,
		Accent:    entry.accent,
	}
}
