package currencies

// catalog is the ordered currency catalog used by the search API.
// The position of each name is its search index, so the order must never change.
// Index 0 is reserved
var catalog = [...]string{
	"",
	"alteration",
	"fusing",
	"alchemy",
	"chaos",
	"gcp",
	"exalted",
	"chromatic",
	"jeweller",
	"chance",
	"chisel",
	"scouring",
	"blessed",
	"regret",
	"regal",
	"divine",
	"vaal",
	"wisdom",
	"portal",
	"scrap",
	"whetstone",
	"bauble",
	"transmutation",
	"augmentation",
	"mirror",
	"eternal",
	"perandus_coin",
	"dusk",
	"midnight",
	"dawn",
	"noon",
	"grief",
	"rage",
	"hope",
	"ignorance",
	"silver",
	"eber",
	"yriel",
	"inya",
	"volkuur",
	"offering",
}

var indexByName = func() map[string]int {
	m := make(map[string]int, len(catalog)-1)

	for i, name := range catalog[1:] {
		m[name] = i + 1
	}

	return m
}()

// Entry is a single catalog currency
type Entry struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Index returns the search index for the given currency name.
// The lookup is exact and case-sensitive
func Index(name string) (int, bool) {
	idx, ok := indexByName[name]

	return idx, ok
}

// Name returns the currency name at the given search index
func Name(index int) (string, bool) {
	if index <= 0 || index >= len(catalog) {
		return "", false
	}

	return catalog[index], true
}

// All returns the catalog entries in index order, without the reserved slot
func All() []Entry {
	out := make([]Entry, 0, len(catalog)-1)

	for i, name := range catalog[1:] {
		out = append(out, Entry{
			Name:  name,
			Index: i + 1,
		})
	}

	return out
}
