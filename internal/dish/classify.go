// Package dish turns free-text dish names into structured attributes.
//
// Classification is rule based: every attribute has an ordered rule table
// and the first matching rule wins. Unmatched names fall back to a
// documented default, so classification never fails.
package dish

// Classify derives the attributes of a dish from its name and raw category.
// A soup category forces isSoup. Soups are always light and carry no protein.
func Classify(name, category string, isSoup bool) Attributes {
	if !isSoup && category != "" {
		isSoup = IsSoupCategory(category)
	}

	t := NewText(name)
	attrs := Attributes{
		Heaviness: heavinessOf(t, isSoup),
		Season:    seasonOf(t),
		Base:      baseOf(t),
	}
	if !isSoup {
		attrs.Protein = proteinOf(t)
	}
	return attrs
}

// InferProtein returns the protein of a recipe name, mixed when no rule
// matches. A name with a meat indicator is never vege.
func InferProtein(name string) Protein {
	return proteinOf(NewText(name))
}

// InferHeaviness returns light for soups, otherwise the first heaviness rule
// match or medium.
func InferHeaviness(name string, isSoup bool) Heaviness {
	return heavinessOf(NewText(name), isSoup)
}

// InferSeason returns the first season rule match or all-year.
func InferSeason(name string) Season {
	return seasonOf(NewText(name))
}

// HasMeatIndicator reports whether the name mentions any meat.
func HasMeatIndicator(name string) bool {
	return MeatIndicators.Match(NewText(name))
}

func proteinOf(t Text) Protein {
	if MeatIndicators.Match(t) {
		p, ok := ProteinRules.FirstWhere(t, func(p Protein) bool { return p != ProteinVege })
		if !ok {
			return ProteinMixed
		}
		return p
	}
	if p, _, ok := ProteinRules.First(t); ok {
		return p
	}
	return ProteinMixed
}

func heavinessOf(t Text, isSoup bool) Heaviness {
	if isSoup {
		return HeavinessLight
	}
	if h, _, ok := HeavinessRules.First(t); ok {
		return h
	}
	return HeavinessMedium
}

func seasonOf(t Text) Season {
	if s, _, ok := SeasonRules.First(t); ok {
		return s
	}
	return SeasonAllYear
}
