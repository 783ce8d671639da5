package aztec

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/AztecProtocol/gregoswap-sub001/internal/core/ports"
)

// Register implements ports.ContractRegistry: it instantiates a handle for
// an already deployed contract, bound to the given wallet.
func (s *Service) Register(
	ctx context.Context, wallet ports.Wallet, name, address string,
) (ports.ContractHandle, error) {
	_, err := s.post(fmt.Sprintf("%s/contracts/register", s.nodeUrl), map[string]string{
		"name":    name,
		"address": address,
		"wallet":  wallet.Address(),
	})
	if err != nil {
		return nil, fmt.Errorf("registering contract %s: %w", name, err)
	}

	return &contractHandle{
		svc:     s,
		name:    name,
		address: address,
		wallet:  wallet.Address(),
	}, nil
}

// Deploy implements ports.ContractRegistry: it deploys a fresh contract
// instance and returns its address.
func (s *Service) Deploy(
	ctx context.Context, name string, args []interface{},
) (string, error) {
	body, err := s.post(fmt.Sprintf("%s/contracts/deploy", s.nodeUrl), map[string]interface{}{
		"name": name,
		"args": args,
	})
	if err != nil {
		return "", fmt.Errorf("deploying contract %s: %w", name, err)
	}

	reply := struct {
		Address string `json:"address"`
	}{}
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return "", fmt.Errorf("parsing deploy reply: %w", err)
	}
	return reply.Address, nil
}

// SimulateBatch implements ports.ContractRegistry: it simulates all calls in
// one round trip and returns the results in call order.
func (s *Service) SimulateBatch(
	ctx context.Context, wallet ports.Wallet, calls []ports.BatchedCall,
) ([]uint64, error) {
	payload := make([]map[string]interface{}, 0, len(calls))
	for _, c := range calls {
		payload = append(payload, map[string]interface{}{
			"contract": c.Contract.Address(),
			"method":   c.Call.Method,
			"args":     c.Call.Args,
		})
	}

	body, err := s.post(fmt.Sprintf("%s/contracts/simulate-batch", s.nodeUrl), map[string]interface{}{
		"wallet": wallet.Address(),
		"calls":  payload,
	})
	if err != nil {
		return nil, fmt.Errorf("simulating batch: %w", err)
	}

	reply := struct {
		Results []uint64 `json:"results"`
	}{}
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("parsing batch reply: %w", err)
	}
	if len(reply.Results) != len(calls) {
		return nil, fmt.Errorf(
			"batch returned %d results for %d calls", len(reply.Results), len(calls),
		)
	}
	return reply.Results, nil
}

// CreateAuthWitness implements ports.ContractRegistry: it builds the
// delegated-approval credential allowing target to perform the given call on
// the wallet's behalf.
func (s *Service) CreateAuthWitness(
	ctx context.Context, wallet ports.Wallet, target string, call ports.ContractCall,
) (ports.AuthWitness, error) {
	body, err := s.post(fmt.Sprintf("%s/wallets/%s/auth-witness", s.nodeUrl, wallet.Address()),
		map[string]interface{}{
			"target": target,
			"method": call.Method,
			"args":   call.Args,
		})
	if err != nil {
		return nil, fmt.Errorf("creating auth witness: %w", err)
	}

	reply := struct {
		Witness string `json:"witness"`
	}{}
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("parsing auth witness reply: %w", err)
	}
	witness, err := hex.DecodeString(reply.Witness)
	if err != nil {
		return nil, fmt.Errorf("parsing auth witness: %w", err)
	}
	return ports.AuthWitness(witness), nil
}

type contractHandle struct {
	svc     *Service
	name    string
	address string
	wallet  string
}

func (h *contractHandle) Address() string {
	return h.address
}

func (h *contractHandle) Simulate(
	ctx context.Context, call ports.ContractCall,
) (uint64, error) {
	body, err := h.svc.post(
		fmt.Sprintf("%s/contracts/%s/simulate", h.svc.nodeUrl, h.address),
		map[string]interface{}{
			"wallet": h.wallet,
			"method": call.Method,
			"args":   call.Args,
		})
	if err != nil {
		return 0, err
	}

	reply := struct {
		Result uint64 `json:"result"`
	}{}
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return 0, fmt.Errorf("parsing simulate reply: %w", err)
	}
	return reply.Result, nil
}

func (h *contractHandle) Send(
	ctx context.Context, call ports.ContractCall, opts ports.SendOpts,
) (ports.Transaction, error) {
	witnesses := make([]string, 0, len(opts.AuthWitnesses))
	for _, w := range opts.AuthWitnesses {
		witnesses = append(witnesses, hex.EncodeToString(w))
	}

	body, err := h.svc.post(
		fmt.Sprintf("%s/contracts/%s/send", h.svc.nodeUrl, h.address),
		map[string]interface{}{
			"wallet":        h.wallet,
			"method":        call.Method,
			"args":          call.Args,
			"authWitnesses": witnesses,
			"feeMethod":     opts.FeeMethod,
		})
	if err != nil {
		return nil, err
	}

	reply := struct {
		TxHash string `json:"txHash"`
	}{}
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("parsing send reply: %w", err)
	}

	tx := newTransaction(h.svc, reply.TxHash)
	go tx.watch()
	return tx, nil
}
