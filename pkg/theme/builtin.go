package theme

import "github.com/aclements/go-gg/palette"

// thRegisterBuiltins registers all built-in schemes in the registry.
func thRegisterBuiltins() {
	for _, s := range []Scheme{
		thTableau10(),
		thCategory10(),
		thDark2(),
		thSet2(),
		thViridis(),
		thBlues(),
		thRdBu(),
	} {
		thRegister(s)
	}
}

// thTableau10 is the default categorical palette.
func thTableau10() Scheme {
	return Scheme{
		Name: "tableau10",
		Kind: Categorical,
		Colors: []string{
			"#4e79a7", "#f28e2c", "#e15759", "#76b7b2", "#59a14f",
			"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
		},
	}
}

func thCategory10() Scheme {
	return Scheme{
		Name: "category10",
		Kind: Categorical,
		Colors: []string{
			"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
			"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
		},
	}
}

func thDark2() Scheme {
	return Scheme{
		Name: "dark2",
		Kind: Categorical,
		Colors: []string{
			"#1b9e77", "#d95f02", "#7570b3", "#e7298a",
			"#66a61e", "#e6ab02", "#a6761d", "#666666",
		},
	}
}

func thSet2() Scheme {
	return Scheme{
		Name: "set2",
		Kind: Categorical,
		Colors: []string{
			"#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3",
			"#a6d854", "#ffd92f", "#e5c494", "#b3b3b3",
		},
	}
}

// thViridis is the default continuous scheme. Colors are the stops shown
// in legends; mapping goes through go-gg's full viridis table.
func thViridis() Scheme {
	return Scheme{
		Name: "viridis",
		Kind: Continuous,
		Colors: []string{
			"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
			"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
		},
		gradient: palette.Viridis,
	}
}

func thBlues() Scheme {
	return Scheme{
		Name: "blues",
		Kind: Continuous,
		Colors: []string{
			"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6",
			"#4292c6", "#2171b5", "#08519c", "#08306b",
		},
	}
}

// thRdBu is the diverging red-blue scheme contour plots default to.
func thRdBu() Scheme {
	return Scheme{
		Name: "rdbu",
		Kind: Continuous,
		Colors: []string{
			"#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7", "#f7f7f7",
			"#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061",
		},
	}
}
