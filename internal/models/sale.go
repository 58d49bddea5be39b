package models

// SaleLine: строка продажи: товар и количество.
type SaleLine struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// DummySale используется для приёма корзины из JSON-запроса.
type DummySale struct {
	Lines []SaleLine `json:"lines" validate:"required,min=1,dive"`
}

// LineResult: результат применения одной строки продажи.
// Строки обрабатываются независимо, поэтому вызывающий обязан
// проверить результат каждой строки.
type LineResult struct {
	ProductID      int64  `json:"product_id"`
	Quantity       int    `json:"quantity"`
	OK             bool   `json:"ok"`
	Code           string `json:"code,omitempty"`
	Error          string `json:"error,omitempty"`
	RemainingStock int    `json:"remaining_stock"`
	Err            error  `json:"-"`
}

// SaleResult: итог продажи по всем строкам.
type SaleResult struct {
	SaleID string       `json:"sale_id"`
	Lines  []LineResult `json:"lines"`
}

// Applied сообщает, была ли применена хотя бы одна строка.
func (r SaleResult) Applied() bool {
	for _, l := range r.Lines {
		if l.OK {
			return true
		}
	}
	return false
}

// Failed возвращает строки, которые не удалось применить.
func (r SaleResult) Failed() []LineResult {
	var failed []LineResult
	for _, l := range r.Lines {
		if !l.OK {
			failed = append(failed, l)
		}
	}
	return failed
}
