package feed

import "encoding/json"

// Response is one page of the clearinghouse movements endpoint.
type Response struct {
	Items       []RawMovement `json:"itens"`
	CurrentPage int           `json:"paginaAtual"`
	TotalPages  int           `json:"totalPaginas"`
}

// RawMovement is one movement as reported by the feed, before normalization.
// Money fields are decoded as json.Number and parsed straight into decimals;
// a float64 detour would defeat the exact-arithmetic guarantee downstream.
type RawMovement struct {
	MovementType   string      `json:"tipoMovimentacao"`
	OperationSide  string      `json:"tipoOperacao"`
	Product        string      `json:"produto"`
	ProductType    string      `json:"tipoProduto"`
	TickerSymbol   string      `json:"codigoNegociacao"`
	OperationValue json.Number `json:"valorOperacao"`
	Quantity       json.Number `json:"quantidade"`
	UnitPrice      json.Number `json:"precoUnitario"`
	ReferenceDate  string      `json:"dataReferencia"`
}

// Raw movement type labels used by the feed.
const (
	rawTypeSettlement   = "Transferência - Liquidação"
	rawTypeSplit        = "Desdobro"
	rawTypeReverseSplit = "Grupamento"
	rawTypeBonusShare   = "Bonificação em Ativos"

	rawSideCredit = "Credito"
	rawSideDebit  = "Debito"
)
