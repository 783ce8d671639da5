package aztec

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
)

const maxTxPolls = 600

// transaction watches a submitted transaction by polling its receipt until
// it is mined or dropped. Phases receives each lifecycle transition at most
// once and is closed on termination; Err is valid after the close.
type transaction struct {
	svc  *Service
	hash string

	phases chan ports.TxPhase

	mtx sync.Mutex
	err error
}

func newTransaction(svc *Service, hash string) *transaction {
	return &transaction{
		svc:    svc,
		hash:   hash,
		phases: make(chan ports.TxPhase, 3),
	}
}

func (t *transaction) Hash() string {
	return t.hash
}

func (t *transaction) Phases() <-chan ports.TxPhase {
	return t.phases
}

func (t *transaction) Err() error {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.err
}

type txReceipt struct {
	Status string `json:"status"`
	Error  struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func (t *transaction) watch() {
	defer close(t.phases)

	t.phases <- ports.TxPhaseSent

	mining := false
	ticker := time.NewTicker(t.svc.txPollInterval)
	defer ticker.Stop()

	for polls := 0; polls < maxTxPolls; polls++ {
		<-ticker.C

		body, err := t.svc.get(fmt.Sprintf("%s/txs/%s", t.svc.nodeUrl, t.hash))
		if err != nil {
			t.fail(err)
			return
		}

		receipt := txReceipt{}
		if err := json.Unmarshal([]byte(body), &receipt); err != nil {
			t.fail(fmt.Errorf("parsing tx receipt: %w", err))
			return
		}

		switch receipt.Status {
		case "pending":
		case "mining":
			if !mining {
				mining = true
				t.phases <- ports.TxPhaseMining
			}
		case "mined":
			if !mining {
				t.phases <- ports.TxPhaseMining
			}
			t.phases <- ports.TxPhaseMined
			return
		case "dropped", "failed":
			t.fail(&ports.TxError{
				Kind:    txErrorKind(receipt.Error.Kind),
				Message: receipt.Error.Message,
			})
			return
		default:
			t.fail(fmt.Errorf("unknown tx status %q", receipt.Status))
			return
		}
	}

	t.fail(fmt.Errorf("transaction %s not mined in time", t.hash))
}

func (t *transaction) fail(err error) {
	t.mtx.Lock()
	t.err = err
	t.mtx.Unlock()
}
