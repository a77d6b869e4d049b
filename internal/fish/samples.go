package fish

// SampleFishes returns a fresh copy of the demo catalog used to seed an empty
// store. Keys are fixed so loading twice overwrites rather than duplicates.
func SampleFishes() Inventory {
	return Inventory{
		"fish1": {
			Name:   "Pacific Halibut",
			Image:  "/images/hali.jpg",
			Desc:   "Everyones favorite white fish. We will cut it to the size you need and ship it.",
			Price:  1724,
			Status: StatusAvailable,
		},
		"fish2": {
			Name:   "Lobster",
			Image:  "/images/lobster.jpg",
			Desc:   "These tender, mouth-watering beauties are a fantastic hit at any dinner party.",
			Price:  3200,
			Status: StatusAvailable,
		},
		"fish3": {
			Name:   "Sea Scallops",
			Image:  "/images/scallops.jpg",
			Desc:   "Big, sweet and tender. True dry-pack scallops from the icey waters of Alaska. About 8-10 per pound",
			Price:  1684,
			Status: StatusUnavailable,
		},
		"fish4": {
			Name:   "Mahi Mahi",
			Image:  "/images/mahi.jpg",
			Desc:   "Lean flesh with a mild, sweet flavor profile, moderately firm texture and large, moist flakes.",
			Price:  1129,
			Status: StatusAvailable,
		},
		"fish5": {
			Name:   "King Crab",
			Image:  "/images/crab.jpg",
			Desc:   "Crack these open and enjoy them plain or with one of our cocktail sauces",
			Price:  4234,
			Status: StatusAvailable,
		},
		"fish6": {
			Name:   "Atlantic Salmon",
			Image:  "/images/salmon.jpg",
			Desc:   "This flaky, oily salmon is truly the king of the sea. Bake it, grill it, broil it...as good as it gets!",
			Price:  1453,
			Status: StatusAvailable,
		},
		"fish7": {
			Name:   "Oysters",
			Image:  "/images/oysters.jpg",
			Desc:   "A soft plump oyster with a sweet salty flavor and a clean finish.",
			Price:  2543,
			Status: StatusAvailable,
		},
		"fish8": {
			Name:   "Mussels",
			Image:  "/images/mussels.jpg",
			Desc:   "The best mussels from the Pacific Northwest with a full-flavored and complex taste.",
			Price:  425,
			Status: StatusAvailable,
		},
		"fish9": {
			Name:   "Jumbo Prawns",
			Image:  "/images/prawns.jpg",
			Desc:   "With 21-25 two bite prawns in each pound, these sweet morsels are perfect for shish-kabobs.",
			Price:  2250,
			Status: StatusAvailable,
		},
	}
}
