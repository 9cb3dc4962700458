package lexicon

// Default returns the built-in Swedish merchant lexicon. Entry order is the
// documented tie-break: the first listed category whose keywords match wins.
func Default() *Lexicon {
	return New([]Entry{
		// Groceries
		{
			Category: "Mat",
			Keywords: []string{"ICA", "COOP", "HEMKÖP", "WILLYS", "LIDL", "NETTO", "MAXI"},
		},
		{
			Category: "Mat",
			Keywords: []string{"SYSTEMBOLAGET"},
		},

		// Transportation: public transport, fuel, parking
		{
			Category: "Transport",
			Keywords: []string{"SL", "MTR", "PENDELTÅG"},
		},
		// Normalize strips digits, so digit-bearing brands (ST1) cannot be
		// keyworded: they would collapse to noise tokens like "ST".
		{
			Category: "Transport",
			Keywords: []string{"SHELL", "OKQ8", "PREEM", "CIRCLE K", "QSTAR", "INGO"},
		},
		{
			Category: "Transport",
			Keywords: []string{"PARKERING", "P-HUS", "APCOA", "TAXI"},
		},

		// Healthcare
		{
			Category: "Hälsa",
			Keywords: []string{"APOTEKET", "APOTEK", "VÅRDCENTRAL", "FOLKTANDVÅRD", "TANDLÄKARE"},
		},

		// Dining and entertainment
		{
			Category: "Nöje",
			Keywords: []string{"RESTAURANG", "CAFÉ", "PIZZERIA", "SUSHI", "MCDONALDS", "BURGER", "SUBWAY", "ESPRESSO"},
		},
		{
			Category: "Nöje",
			Keywords: []string{"FILMSTADEN", "SF BIO", "CINEMA"},
		},

		// Housing: rent, utilities, telecom
		{
			Category: "Boende",
			Keywords: []string{"HYRA", "ELNÄT", "VATTENFALL", "TELIA", "TELENOR", "BREDBAND", "COMHEM", "FÖRSÄKRING"},
		},

		// Income, only on positive amounts
		{
			Category: "Inkomst",
			Sign:     SignPositive,
			Keywords: []string{"LÖN", "SALARY", "PENSION"},
		},
	})
}
