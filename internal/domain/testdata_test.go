package domain

func testMapping() *CurrencyMapping {
	mapping, err := NewCurrencyMapping("USD", "USDx", map[CurrencyCode]CurrencyCode{
		"cNGN": "NGN",
		"cXAF": "XAF",
		"USDx": "USD",
		"EURx": "EUR",
		"cGHS": "GHS",
		"cKES": "KES",
	})
	if err != nil {
		panic(err)
	}
	return mapping
}
