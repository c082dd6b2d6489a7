package classify

import "strings"

// groceryWords is the highest-priority rule: any of these as a substring of
// the lower-cased description maps straight to Food, before every other set.
var groceryWords = []string{
	"milk", "curd", "yogurt", "paneer", "butter", "cheese", "bread",
	"vegetable", "veggies", "fruit", "banana", "apple", "egg", "eggs",
	"rice", "wheat", "atta", "flour", "dal", "lentil", "lentils",
	"pulse", "pulses", "oil", "spice", "spices", "sugar", "salt",
	"tea", "coffee", "grocery", "supermarket", "kirana",
}

// keywordRule pairs a category with its keyword set. Rules are evaluated in
// order and the first match wins, so a description hitting two sets always
// resolves to the earlier one.
type keywordRule struct {
	category string
	words    []string
}

var keywordRules = []keywordRule{
	{"Food", []string{
		"food", "restaurant", "dinner", "lunch", "breakfast", "grocery",
		"pizza", "burger", "coffee", "tea", "snack", "meal", "cafe",
		"bakery", "sweets", "chocolate", "ice cream", "juice", "water",
	}},
	{"Entertainment", []string{
		"movie", "cinema", "theatre", "game", "concert", "party", "show",
		"ticket", "entertainment", "fun", "amusement", "park", "museum",
		"exhibition", "festival", "event", "booking", "reservation",
	}},
	{"Transport", []string{
		"uber", "taxi", "cab", "fuel", "gas", "parking", "bus", "train",
		"metro", "subway", "flight", "airplane", "car", "bike", "scooter",
		"maintenance", "repair", "insurance", "toll", "fare",
	}},
	{"Shopping", []string{
		"shirt", "shoes", "dress", "clothes", "fashion", "shopping",
		"store", "mall", "market", "shop", "buy", "purchase", "retail",
		"electronics", "phone", "laptop", "accessories", "jewelry",
	}},
	{"Bills", []string{
		"electricity", "water", "internet", "rent", "bill", "utility",
		"phone", "mobile", "subscription", "service", "maintenance",
		"insurance", "tax", "fees", "charges",
	}},
	{"Healthcare", []string{
		"medicine", "doctor", "hospital", "pharmacy", "medical", "health",
		"dental", "eye", "vision", "therapy", "treatment", "consultation",
		"prescription", "vitamins", "supplements",
	}},
	{"Education", []string{
		"course", "book", "training", "workshop", "education", "school",
		"college", "university", "class", "lesson", "tutorial",
	}},
	{"Travel", []string{
		"hotel", "vacation", "tourism", "travel", "trip", "journey",
		"flight", "accommodation", "resort", "lodging",
	}},
	{"Home", []string{
		"furniture", "repair", "maintenance", "household", "home",
		"kitchen", "bathroom", "bedroom", "living room", "garden", "yard",
	}},
}

// GroceryHint applies only the grocery rule and reports whether it fired.
// This restricted form is what reconciliation against the external classifier
// uses; the full chain below is the fallback path.
func GroceryHint(description string) (string, bool) {
	lower := strings.ToLower(description)
	for _, word := range groceryWords {
		if strings.Contains(lower, word) {
			return "Food", true
		}
	}
	return "", false
}

// ClassifyKeywords maps a free-text description to a catalog category name.
// It is total over all inputs and deterministic: grocery words first, then the
// ordered keyword rules, then DefaultCategory. The amount is part of the
// classification contract but carries no signal here.
func ClassifyKeywords(description string, amount float64) string {
	if category, ok := GroceryHint(description); ok {
		return category
	}

	lower := strings.ToLower(description)
	for _, rule := range keywordRules {
		for _, word := range rule.words {
			if strings.Contains(lower, word) {
				return rule.category
			}
		}
	}

	return DefaultCategory
}
