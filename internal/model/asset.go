package model

// AssetCategory identifies the tax treatment bucket an instrument belongs to.
// The category decides the applicable capital-gains rate and whether the
// monthly sales-exemption threshold applies.
type AssetCategory string

const (
	// CategoryStock covers common/preferred shares traded on B3 (e.g. PETR4, VALE3).
	CategoryStock AssetCategory = "stock"

	// CategoryETF covers exchange-traded index funds (e.g. BOVA11, IVVB11).
	CategoryETF AssetCategory = "etf"

	// CategoryFII covers real-estate investment funds (Fundos Imobiliários).
	CategoryFII AssetCategory = "fii"

	// CategoryUnit covers share deposit certificates bundling ON+PN shares
	// (e.g. SANB11, TAEE11). Taxed like common stock.
	CategoryUnit AssetCategory = "unit"

	// CategoryBDR covers Brazilian Depositary Receipts of foreign shares.
	CategoryBDR AssetCategory = "bdr"

	// CategoryFundOfFunds covers funds that invest in other real-estate funds (FoFs).
	CategoryFundOfFunds AssetCategory = "fof"

	// CategoryGold covers gold traded as a financial asset (OZ1D/OZ2D contracts).
	CategoryGold AssetCategory = "gold"
)

// ValidAssetCategories contains every recognized category value.
var ValidAssetCategories = map[AssetCategory]bool{
	CategoryStock:       true,
	CategoryETF:         true,
	CategoryFII:         true,
	CategoryUnit:        true,
	CategoryBDR:         true,
	CategoryFundOfFunds: true,
	CategoryGold:        true,
}

// SharesExemptionPool reports whether sales of this category count toward, and
// benefit from, the monthly R$20,000 stock exemption. Units are certificates of
// common shares, so they share the stock pool.
func (c AssetCategory) SharesExemptionPool() bool {
	return c == CategoryStock || c == CategoryUnit
}
