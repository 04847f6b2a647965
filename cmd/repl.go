package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tonyntran/fantasy-auction-assistant/internal/app"
	"github.com/tonyntran/fantasy-auction-assistant/internal/domain/model"
)

// repl is the terminal command surface for a live auction. Player names
// may contain spaces, so multi-argument commands separate their
// arguments with commas: sell Justin Jefferson, Sharks, 52
type repl struct {
	svc *app.Service
	in  io.Reader
	out io.Writer
}

func newREPL(svc *app.Service, in io.Reader, out io.Writer) *repl {
	return &repl{svc: svc, in: in, out: out}
}

const replHelp = `commands:
  sell <player>, <team>, <amount>    record a completed sale
  undo <player>                      reverse a recorded sale
  nom <player>, <team>[, <bid>]      put a player on the block
  bid <team>, <amount>               record the current high bid
  budget <team>, <remaining>         correct a team's remaining budget
  advise <player>, <bid>             should I bid? and up to how much
  whatif <player>, <price>           simulate buying at a price
  top [position] [n]                 best remaining players by VORP
  status                             market and budget summary
  reset                              wipe draft progress, keep the pool
  quit                               exit
`

func (r *repl) run(ctx context.Context) {
	fmt.Fprint(r.out, "auction assistant ready; type 'help' for commands\n")

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.out, "> ")
		if !scanner.Scan() {
			return
		}
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		verb := line
		rest := ""
		if i := strings.IndexByte(line, ' '); i > 0 {
			verb, rest = line[:i], strings.TrimSpace(line[i+1:])
		}

		if strings.EqualFold(verb, "quit") || strings.EqualFold(verb, "exit") {
			return
		}
		if err := r.dispatch(ctx, strings.ToLower(verb), rest); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
}

func (r *repl) dispatch(ctx context.Context, verb, rest string) error {
	switch verb {
	case "help":
		fmt.Fprint(r.out, replHelp)
		return nil
	case "sell":
		player, team, amount, err := nameTeamAmount(rest)
		if err != nil {
			return err
		}
		return r.svc.Sell(ctx, player, team, amount)
	case "undo":
		if rest == "" {
			return fmt.Errorf("usage: undo <player>")
		}
		return r.svc.Undo(ctx, rest)
	case "nom", "nominate":
		return r.nominate(ctx, rest)
	case "bid":
		team, amount, err := stringAndInt(rest)
		if err != nil {
			return fmt.Errorf("usage: bid <team>, <amount>")
		}
		return r.svc.Bid(ctx, team, amount)
	case "budget":
		team, amount, err := stringAndInt(rest)
		if err != nil {
			return fmt.Errorf("usage: budget <team>, <remaining>")
		}
		return r.svc.AdjustBudget(ctx, team, amount)
	case "advise":
		player, bid, err := stringAndInt(rest)
		if err != nil {
			return fmt.Errorf("usage: advise <player>, <bid>")
		}
		return r.advise(ctx, player, bid)
	case "whatif":
		player, price, err := stringAndInt(rest)
		if err != nil {
			return fmt.Errorf("usage: whatif <player>, <price>")
		}
		return r.whatIf(ctx, player, price)
	case "top":
		return r.top(rest)
	case "status":
		r.status()
		return nil
	case "reset":
		return r.svc.Reset(ctx)
	default:
		return fmt.Errorf("unknown command %q; type 'help'", verb)
	}
}

func (r *repl) nominate(ctx context.Context, rest string) error {
	parts := splitArgs(rest)
	if len(parts) < 2 {
		return fmt.Errorf("usage: nom <player>, <team>[, <bid>]")
	}
	bid := 1
	if len(parts) > 2 {
		n, err := strconv.Atoi(parts[2])
		if err != nil {
			return fmt.Errorf("opening bid: %w", err)
		}
		bid = n
	}
	return r.svc.Nominate(ctx, parts[0], parts[1], bid)
}

func (r *repl) advise(ctx context.Context, player string, bid int) error {
	advice, err := r.svc.Advise(ctx, player, bid)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s  max bid $%d\n", advice.Action, advice.MaxBid)
	fmt.Fprintf(r.out, "  adjusted $%.1f  market $%.1f  inflation %.3f\n",
		advice.AdjustedFMV, advice.MarketFMV, advice.Inflation)
	fmt.Fprintf(r.out, "  vorp %.1f  vona %.1f", advice.VORP, advice.VONA)
	if advice.VONANext != "" {
		fmt.Fprintf(r.out, " (next: %s)", advice.VONANext)
	}
	fmt.Fprintf(r.out, "\n  %s\n", advice.Reasoning)
	return nil
}

func (r *repl) whatIf(ctx context.Context, player string, price int) error {
	result, err := r.svc.WhatIf(ctx, player, price)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "buy %s at $%d -> budget $%d, roster %d/%d, projected %.1f pts\n",
		result.Player, result.Price, result.RemainingBudget,
		result.RosterFilled, result.RosterSize, result.ProjectedTotalPoints)
	for _, pick := range result.OptimalPicks {
		fmt.Fprintf(r.out, "  then %s (%s) ~$%d, vorp %.1f\n",
			pick.Player, pick.Position, pick.EstimatedPrice, pick.VORP)
	}
	return nil
}

func (r *repl) top(rest string) error {
	pos := model.Position("")
	n := 10
	for _, f := range strings.Fields(rest) {
		if v, err := strconv.Atoi(f); err == nil {
			n = v
			continue
		}
		p, err := model.ParsePosition(strings.ToUpper(f))
		if err != nil {
			return err
		}
		pos = p
	}

	remaining := r.svc.RemainingPlayers(pos)
	if len(remaining) > n {
		remaining = remaining[:n]
	}
	for i, ps := range remaining {
		fmt.Fprintf(r.out, "%2d. %-24s %-4s tier %d  %.1f pts  vorp %.1f  fmv $%.0f\n",
			i+1, ps.Projection.Name, ps.Projection.Position,
			ps.Projection.Tier, ps.Projection.ProjectedPoints, ps.VORP, ps.FMV)
	}
	return nil
}

func (r *repl) status() {
	snap := r.svc.Snapshot()
	undrafted := 0
	for _, ps := range snap.Players {
		if !ps.Drafted {
			undrafted++
		}
	}
	fmt.Fprintf(r.out, "seq %d  remaining players %d  cash $%d  value $%d  inflation %.3f\n",
		snap.Seq, undrafted, snap.Market.RemainingCash,
		snap.Market.RemainingValue, snap.Market.Inflation)
	if snap.Market.Nomination != "" {
		fmt.Fprintf(r.out, "on the block: %s, bid $%d by %s\n",
			snap.Market.Nomination, snap.Market.CurrentBid, snap.Market.HighBidder)
	}
	for name, team := range snap.Teams {
		fmt.Fprintf(r.out, "  %-20s budget $%d  players %d\n",
			name, team.RemainingBudget, len(team.Acquired))
	}
}

// splitArgs splits comma-separated command arguments.
func splitArgs(rest string) []string {
	parts := strings.Split(rest, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nameTeamAmount(rest string) (string, string, int, error) {
	parts := splitArgs(rest)
	if len(parts) != 3 {
		return "", "", 0, fmt.Errorf("usage: sell <player>, <team>, <amount>")
	}
	amount, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", "", 0, fmt.Errorf("amount: %w", err)
	}
	return parts[0], parts[1], amount, nil
}

func stringAndInt(rest string) (string, int, error) {
	parts := splitArgs(rest)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("expected two comma-separated arguments")
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, err
	}
	return parts[0], n, nil
}
