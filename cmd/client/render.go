package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/service"
)

func printResult(res service.Result) {
	for _, e := range res.Events {
		pterm.Info.Println(describeEvent(e))
	}
	if q, ok := res.Question(); ok {
		pterm.Printfln("question %s: %s", pterm.LightCyan(q.ID), describeContent(q.Content))
	}
	if a, ok := res.Answer(); ok {
		pterm.Printfln("answer %s: %s", pterm.LightCyan(a.ID), a.Status)
	}
	if tx, ok := res.Transaction(); ok {
		pterm.Printfln("transaction %s %d (deposit %d -> %d)", tx.Type, tx.Amount, tx.DepositBefore, tx.DepositAfter)
	}
}

func printGame(res service.Result) {
	g := res.State.Game
	status := pterm.LightGreen(string(g.Status))
	if g.Status != engine.StatusActive {
		status = pterm.LightYellow(string(g.Status))
	}
	box := pterm.DefaultBox.WithTitle(pterm.LightCyan("|" + g.ID + "|")).WithTitleTopCenter()
	box.Printfln("status: %s  cycle: %d  turn: %s\njury: %s  deposit: %d / %d funded",
		status, g.CurrentCycle, orDash(g.CurrentPlayerTurn), orDash(res.State.Game.JuryID),
		res.State.Deposit.CurrentAmount, res.State.Deposit.InitialAmount)

	rows := pterm.TableData{{"Player", "Role", "Balance", "Debts", "Active"}}
	for _, p := range res.State.Players {
		rows = append(rows, []string{
			p.ParticipantID, string(p.Role), strconv.FormatInt(p.Balance, 10),
			strconv.Itoa(p.DebtCount), strconv.FormatBool(p.IsActive),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()

	if q, ok := res.State.OpenQuestion(); ok {
		pterm.Printfln("open question %s from %s: %s", pterm.LightCyan(q.ID), q.AskedBy, describeContent(q.Content))
		for _, a := range res.State.Answers {
			if a.QuestionID != q.ID {
				continue
			}
			text := "refused"
			if a.Content != nil {
				text = describeContent(*a.Content)
			}
			pterm.Printfln("  answer %s from %s [%s]: %s", a.ID, a.ResponderID, a.Status, text)
		}
	}
}

func printTransactions(txs []engine.Transaction) {
	rows := pterm.TableData{{"#", "Type", "Player", "Amount", "Balance", "Deposit", "Description"}}
	for _, tx := range txs {
		rows = append(rows, []string{
			strconv.Itoa(tx.Seq), string(tx.Type), orDash(tx.PlayerID), strconv.FormatInt(tx.Amount, 10),
			fmt.Sprintf("%d -> %d", tx.BalanceBefore, tx.BalanceAfter),
			fmt.Sprintf("%d -> %d", tx.DepositBefore, tx.DepositAfter),
			tx.Description,
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func describeEvent(e engine.Event) string {
	switch {
	case e.ParticipantID != "":
		return fmt.Sprintf("%s (%s)", e.Type, e.ParticipantID)
	default:
		return string(e.Type)
	}
}

func describeContent(c engine.Content) string {
	if c.Kind == engine.ContentText {
		return c.Text
	}
	return fmt.Sprintf("[%s] %s", c.Kind, c.MediaURL)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
