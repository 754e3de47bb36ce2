package asset

import "github.com/calculadora-ir-stocks/server-sub001/internal/model"

// feedLabels maps the clearinghouse feed's asset descriptions (normalized with
// normalizeLabel) to tax categories. Matching is exact: a label missing here
// must surface as ErrUnknownAssetType, never be guessed.
var feedLabels = map[string]model.AssetCategory{
	"AÇÕES":          model.CategoryStock,
	"AÇÃO":           model.CategoryStock,
	"UNIT":           model.CategoryUnit,
	"UNITS":          model.CategoryUnit,

	"ETF":                        model.CategoryETF,
	"ETF - EXCHANGE TRADED FUND": model.CategoryETF,
	"FUNDO DE ÍNDICE":            model.CategoryETF,

	"FII":                                     model.CategoryFII,
	"FII - FUNDO DE INVESTIMENTO IMOBILIÁRIO": model.CategoryFII,
	"FUNDO IMOBILIÁRIO":                       model.CategoryFII,

	"FOF":                    model.CategoryFundOfFunds,
	"FUNDO DE FUNDOS":        model.CategoryFundOfFunds,
	"FOF - FUNDO DE FUNDOS":  model.CategoryFundOfFunds,

	"BDR":                                  model.CategoryBDR,
	"BDR - BRAZILIAN DEPOSITARY RECEIPTS":  model.CategoryBDR,
	"RECIBO DE DEPÓSITO DE VALORES (BDR)":  model.CategoryBDR,

	"OURO":                  model.CategoryGold,
	"OURO ATIVO FINANCEIRO": model.CategoryGold,
}

// etfTickers lists B3 index-fund tickers carrying the "11" suffix. Consulted
// before the Unit list when disambiguating.
var etfTickers = map[string]bool{
	"ACWI11": true,
	"BBSD11": true,
	"BOVA11": true,
	"BOVB11": true,
	"BOVV11": true,
	"BRAX11": true,
	"DIVO11": true,
	"ECOO11": true,
	"FIND11": true,
	"GOLD11": true,
	"GOVE11": true,
	"HASH11": true,
	"ISUS11": true,
	"IVVB11": true,
	"MATB11": true,
	"NASD11": true,
	"PIBB11": true,
	"SMAL11": true,
	"SPXI11": true,
	"XFIX11": true,
	"XINA11": true,
}

// unitTickers lists share-deposit-certificate tickers carrying the "11" suffix.
var unitTickers = map[string]bool{
	"ALUP11": true,
	"BPAC11": true,
	"ENGI11": true,
	"IGTI11": true,
	"KLBN11": true,
	"PPLA11": true,
	"RNEW11": true,
	"SANB11": true,
	"SAPR11": true,
	"SULA11": true,
	"TAEE11": true,
}
