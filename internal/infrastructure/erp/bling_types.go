package erp

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Bling API v3 payloads
// ---------------------------------------------------------------------------

type blingListResponse[T any] struct {
	Data []T `json:"data"`
}

type blingItemResponse[T any] struct {
	Data T `json:"data"`
}

type blingIDResponse struct {
	Data struct {
		ID int64 `json:"id"`
	} `json:"data"`
}

type blingRef struct {
	ID int64 `json:"id"`
}

type blingSituacao struct {
	ID    int64 `json:"id"`
	Valor int64 `json:"valor,omitempty"`
}

type blingContato struct {
	ID              int64  `json:"id,omitempty"`
	Nome            string `json:"nome,omitempty"`
	NumeroDocumento string `json:"numeroDocumento,omitempty"`
	Email           string `json:"email,omitempty"`
	Telefone        string `json:"telefone,omitempty"`
	Celular         string `json:"celular,omitempty"`
	Tipo            string `json:"tipo,omitempty"` // F or J
	Situacao        string `json:"situacao,omitempty"`
}

// blingPedidoItem carries amounts as json.Number: Bling rejects quoted
// numbers, which is how decimal.Decimal marshals.
type blingPedidoItem struct {
	Codigo     string      `json:"codigo,omitempty"`
	Descricao  string      `json:"descricao"`
	Quantidade json.Number `json:"quantidade"`
	Valor      json.Number `json:"valor"`
	Unidade    string      `json:"unidade,omitempty"`
}

type blingPedido struct {
	ID          int64             `json:"id,omitempty"`
	Numero      int64             `json:"numero,omitempty"`
	NumeroLoja  string            `json:"numeroLoja,omitempty"`
	Data        blingDate         `json:"data"`
	Total       *decimal.Decimal  `json:"total,omitempty"`
	Contato     blingContato      `json:"contato"`
	Situacao    *blingSituacao    `json:"situacao,omitempty"`
	Itens       []blingPedidoItem `json:"itens,omitempty"`
	Observacoes string            `json:"observacoes,omitempty"`
}

type blingNFe struct {
	ID          int64           `json:"id"`
	Numero      string          `json:"numero"`
	Serie       string          `json:"serie"`
	Situacao    int64           `json:"situacao"`
	ChaveAcesso string          `json:"chaveAcesso"`
	DataEmissao blingDate       `json:"dataEmissao"`
	ValorNota   decimal.Decimal `json:"valorNota"`
	XML         string          `json:"xml"`
	LinkPDF     string          `json:"linkPDF"`
	Pedido      *blingRef       `json:"pedido,omitempty"`
}

// blingDate accepts the date and date-time layouts Bling mixes across
// endpoints; empty and zero dates decode to the zero time.
type blingDate struct {
	time.Time
}

var blingDateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05-07:00",
	"2006-01-02",
}

func (d *blingDate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" || strings.HasPrefix(s, "0000-00-00") {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range blingDateLayouts {
		if t, err := time.ParseInLocation(layout, s, saoPaulo); err == nil {
			d.Time = t
			return nil
		}
	}
	// Unknown layouts are not worth failing a whole page over.
	d.Time = time.Time{}
	return nil
}

func (d blingDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.In(saoPaulo).Format("2006-01-02") + `"`), nil
}

func (d blingDate) ptr() *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.UTC()
	return &t
}

var saoPaulo = loadSaoPaulo()

func loadSaoPaulo() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}
