package erp

import (
	"strconv"

	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/domain/integration"
)

// Default Bling sales order situations
const (
	blingOrderEmAberto    int64 = 6
	blingOrderAtendido    int64 = 9
	blingOrderCancelado   int64 = 12
	blingOrderEmAndamento int64 = 15
	blingOrderAgenciada   int64 = 18
	blingOrderEmDigitacao int64 = 21
	blingOrderVerificado  int64 = 24
)

var blingOrderStatusNames = map[int64]string{
	blingOrderEmAberto:    "em_aberto",
	blingOrderAtendido:    "atendido",
	blingOrderCancelado:   "cancelado",
	blingOrderEmAndamento: "em_andamento",
	blingOrderAgenciada:   "venda_agenciada",
	blingOrderEmDigitacao: "em_digitacao",
	blingOrderVerificado:  "verificado",
}

// mapBlingOrderStatus maps a sales order situation to a local state.
// Custom situations are treated as pending.
func mapBlingOrderStatus(id int64) (string, integration.SyncState) {
	name, ok := blingOrderStatusNames[id]
	if !ok {
		name = "situacao_" + strconv.FormatInt(id, 10)
	}
	switch id {
	case blingOrderEmAndamento, blingOrderVerificado, blingOrderAgenciada:
		return name, integration.SyncStateProcessing
	case blingOrderAtendido:
		return name, integration.SyncStateApproved
	case blingOrderCancelado:
		return name, integration.SyncStateRejected
	default:
		return name, integration.SyncStatePending
	}
}

// NF-e situations
const (
	blingNFePendente            int64 = 1
	blingNFeCancelada           int64 = 2
	blingNFeAguardandoRecibo    int64 = 3
	blingNFeRejeitada           int64 = 4
	blingNFeAutorizada          int64 = 5
	blingNFeEmitidaDanfe        int64 = 6
	blingNFeRegistrada          int64 = 7
	blingNFeAguardandoProtocolo int64 = 8
	blingNFeDenegada            int64 = 9
	blingNFeConsultaSituacao    int64 = 10
	blingNFeBloqueada           int64 = 11
)

var blingNFeStatusNames = map[int64]string{
	blingNFePendente:            "pendente",
	blingNFeCancelada:           "cancelada",
	blingNFeAguardandoRecibo:    "aguardando_recibo",
	blingNFeRejeitada:           "rejeitada",
	blingNFeAutorizada:          "autorizada",
	blingNFeEmitidaDanfe:        "emitida_danfe",
	blingNFeRegistrada:          "registrada",
	blingNFeAguardandoProtocolo: "aguardando_protocolo",
	blingNFeDenegada:            "denegada",
	blingNFeConsultaSituacao:    "consulta_situacao",
	blingNFeBloqueada:           "bloqueada",
}

// mapBlingNFeStatus maps an NF-e situation to a local state. A cancelled
// NF-e maps to rejected; once authorized locally the state machine keeps it
// authorized and only the provider status records the cancellation.
func mapBlingNFeStatus(id int64) (string, integration.SyncState) {
	name, ok := blingNFeStatusNames[id]
	if !ok {
		name = "situacao_" + strconv.FormatInt(id, 10)
	}
	switch id {
	case blingNFePendente:
		return name, integration.SyncStatePending
	case blingNFeAguardandoRecibo, blingNFeAguardandoProtocolo, blingNFeConsultaSituacao:
		return name, integration.SyncStateProcessing
	case blingNFeAutorizada, blingNFeEmitidaDanfe, blingNFeRegistrada:
		return name, integration.SyncStateAuthorized
	case blingNFeRejeitada, blingNFeCancelada:
		return name, integration.SyncStateRejected
	case blingNFeDenegada:
		return name, integration.SyncStateDenied
	case blingNFeBloqueada:
		return name, integration.SyncStateError
	default:
		return name, integration.SyncStatePending
	}
}
