package classify

// CategorySeed describes one entry of the fixed category catalog with its
// display metadata. The catalog is seeded into the database at startup and
// never grows at runtime.
type CategorySeed struct {
	Name  string
	Icon  string
	Color string
}

// DefaultCategory is returned whenever no classification rule matches.
const DefaultCategory = "Other"

// Catalog is the fixed category set, in classification priority order.
var Catalog = []CategorySeed{
	{Name: "Food", Icon: "🍕", Color: "#FF6B6B"},
	{Name: "Entertainment", Icon: "🎬", Color: "#4ECDC4"},
	{Name: "Transport", Icon: "🚗", Color: "#45B7D1"},
	{Name: "Shopping", Icon: "🛍️", Color: "#96CEB4"},
	{Name: "Bills", Icon: "📄", Color: "#FFEAA7"},
	{Name: "Healthcare", Icon: "🏥", Color: "#DDA0DD"},
	{Name: "Education", Icon: "📚", Color: "#98D8C8"},
	{Name: "Travel", Icon: "✈️", Color: "#F7DC6F"},
	{Name: "Home", Icon: "🏠", Color: "#BB8FCE"},
	{Name: "Other", Icon: "📝", Color: "#667eea"},
}

// CategoryNames returns the catalog names in priority order.
func CategoryNames() []string {
	names := make([]string, 0, len(Catalog))
	for _, seed := range Catalog {
		names = append(names, seed.Name)
	}
	return names
}

// IsCategoryName reports whether name is one of the fixed catalog names.
// The match is case-sensitive; catalog names are canonical.
func IsCategoryName(name string) bool {
	for _, seed := range Catalog {
		if seed.Name == name {
			return true
		}
	}
	return false
}
