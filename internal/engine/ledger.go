package engine

import "fmt"

// Every change to the deposit or to a player balance lives in this file and
// leaves a Transaction behind.

func (s *State) appendTransaction(tx Transaction) Transaction {
	tx.ID = newID()
	tx.GameID = s.Game.ID
	tx.Seq = len(s.Transactions) + 1
	tx.DepositAfter = s.Deposit.CurrentAmount
	tx.Timestamp = now()
	s.Game.DepositAmount = s.Deposit.CurrentAmount
	s.Transactions = append(s.Transactions, tx)
	return tx
}

func (s *State) fundDeposit(kind TransactionType, amount int64, description string) Transaction {
	before := s.Deposit.CurrentAmount
	s.Deposit.InitialAmount += amount
	s.Deposit.CurrentAmount += amount
	return s.appendTransaction(Transaction{
		Type:          kind,
		Amount:        amount,
		DepositBefore: before,
		Description:   description,
	})
}

func (s *State) recharge(amount int64, description string) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	return s.fundDeposit(TxDepositRecharge, amount, description), nil
}

func (s *State) payGain(playerID string, amount int64) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	p, ok := s.FindPlayer(playerID)
	if !ok {
		return Transaction{}, ErrNotAPlayer
	}
	if s.Deposit.CurrentAmount < amount {
		return Transaction{}, ErrInsufficientDeposit
	}

	balanceBefore, depositBefore := p.Balance, s.Deposit.CurrentAmount
	p.Balance += amount
	s.Deposit.CurrentAmount -= amount
	s.Deposit.TotalGainsPaid += amount

	return s.appendTransaction(Transaction{
		PlayerID:      playerID,
		Type:          TxGain,
		Amount:        amount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  p.Balance,
		DepositBefore: depositBefore,
		Description:   fmt.Sprintf("gain of %d paid to %s", amount, playerID),
	}), nil
}

// collectPenalty moves at most the player's balance into the deposit. A
// shortfall counts as one debt instead of a negative balance.
func (s *State) collectPenalty(playerID string, amount int64) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	p, ok := s.FindPlayer(playerID)
	if !ok {
		return Transaction{}, ErrNotAPlayer
	}

	collected := min(amount, p.Balance)
	description := fmt.Sprintf("penalty of %d collected from %s", amount, playerID)
	if collected < amount {
		p.DebtCount++
		description = fmt.Sprintf("penalty of %d, %d collected from %s, %d owed", amount, collected, playerID, amount-collected)
	}

	balanceBefore, depositBefore := p.Balance, s.Deposit.CurrentAmount
	p.Balance -= collected
	s.Deposit.CurrentAmount += collected
	s.Deposit.TotalPenaltiesReceived += collected

	return s.appendTransaction(Transaction{
		PlayerID:      playerID,
		Type:          TxPenalty,
		Amount:        collected,
		BalanceBefore: balanceBefore,
		BalanceAfter:  p.Balance,
		DepositBefore: depositBefore,
		Description:   description,
	}), nil
}

func (s *State) recordRefusal(playerID string) (Transaction, error) {
	p, ok := s.FindPlayer(playerID)
	if !ok {
		return Transaction{}, ErrNotAPlayer
	}
	return s.appendTransaction(Transaction{
		PlayerID:      playerID,
		Type:          TxVoluntaryRefusal,
		BalanceBefore: p.Balance,
		BalanceAfter:  p.Balance,
		DepositBefore: s.Deposit.CurrentAmount,
		Description:   playerID + " declined to answer",
	}), nil
}

func (s *State) rechargeBy(actorID string, amount int64) ([]Event, error) {
	if s.Game.Status == StatusFinished {
		return nil, ErrGameFinished
	}
	if actorID != s.Game.CreatedBy && !s.IsJury(actorID) {
		return nil, ErrNotPermitted
	}
	tx, err := s.recharge(amount, "deposit recharged by "+actorID)
	if err != nil {
		return nil, err
	}
	return []Event{{Type: EvtTransactionRecorded, ParticipantID: actorID, TransactionID: tx.ID}}, nil
}

// Ledger is what an audit of the transaction log alone yields.
type Ledger struct {
	Deposit  Deposit
	Balances map[string]int64
}

// ReplayTransactions rebuilds the deposit and every balance from the log.
func ReplayTransactions(txs []Transaction) Ledger {
	l := Ledger{Balances: map[string]int64{}}
	for _, tx := range txs {
		switch tx.Type {
		case TxDepositPayment, TxDepositRecharge:
			l.Deposit.InitialAmount += tx.Amount
			l.Deposit.CurrentAmount += tx.Amount
		case TxGain:
			l.Deposit.CurrentAmount -= tx.Amount
			l.Deposit.TotalGainsPaid += tx.Amount
			l.Balances[tx.PlayerID] += tx.Amount
		case TxPenalty:
			l.Deposit.CurrentAmount += tx.Amount
			l.Deposit.TotalPenaltiesReceived += tx.Amount
			l.Balances[tx.PlayerID] -= tx.Amount
		case TxVoluntaryRefusal:
			// logged only
		}
	}
	return l
}
