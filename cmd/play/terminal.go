package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/game"

	"github.com/muesli/termenv"
)

var errQuit = errors.New("quit")

// terminal plays rounds of human vs computer on a text console.
type terminal struct {
	in       *bufio.Scanner
	out      *termenv.Output
	human    game.PlayerMark
	computer game.PlayerMark
	selector *bot.Selector
	game     *game.Game
}

func newTerminal(in io.Reader, out *termenv.Output, human game.PlayerMark, selector *bot.Selector) *terminal {
	return &terminal{
		in:       bufio.NewScanner(in),
		out:      out,
		human:    human,
		computer: human.Opponent(),
		selector: selector,
		game:     game.NewGame(),
	}
}

// Run plays until the player quits or input ends.
func (t *terminal) Run() error {
	fmt.Fprintf(t.out, "You are %s. Cells are numbered 1-9; r restarts, q quits.\n", t.styleMark(t.human))

	for {
		err := t.playRound()
		if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
			fmt.Fprintln(t.out, "Bye.")
			return nil
		}
		if err != nil {
			return err
		}

		answer, err := t.prompt("Play again? [y/N] ")
		if err != nil || !strings.EqualFold(answer, "y") {
			fmt.Fprintln(t.out, "Bye.")
			return nil
		}
		t.game.Reset()
	}
}

func (t *terminal) playRound() error {
	for !t.game.Over() {
		if t.game.CurrentTurn == t.computer {
			decision, err := t.selector.Decide(t.game.Board, t.computer)
			if err != nil {
				return err
			}
			if err := t.game.Move(t.computer, decision.Index); err != nil {
				return err
			}
			fmt.Fprintf(t.out, "Computer plays %d (%s).\n", decision.Index+1, decision.Rule)
			continue
		}

		t.render()
		line, err := t.prompt("Your move: ")
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case "q":
			return errQuit
		case "r":
			t.game.Reset()
			fmt.Fprintln(t.out, "Board cleared.")
			continue
		}

		cell, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintf(t.out, "%q is not a cell number.\n", line)
			continue
		}
		if err := t.game.Move(t.human, cell-1); err != nil {
			fmt.Fprintln(t.out, t.out.String(err.Error()).Foreground(t.out.Color("1")))
		}
	}

	t.render()
	switch {
	case t.game.Draw:
		fmt.Fprintln(t.out, "Draw.")
	case t.game.Winner == t.human:
		fmt.Fprintln(t.out, t.out.String("You win!").Bold())
	default:
		fmt.Fprintln(t.out, t.out.String("The computer wins.").Bold())
	}
	return nil
}

func (t *terminal) prompt(label string) (string, error) {
	fmt.Fprint(t.out, label)
	if !t.in.Scan() {
		if err := t.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(t.in.Text()), nil
}

func (t *terminal) render() {
	winning := make(map[int]bool, 3)
	for _, i := range t.game.WinningLine {
		winning[i] = true
	}

	var b strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			b.WriteString("---+---+---\n")
		}
		for col := 0; col < 3; col++ {
			i := row*3 + col
			if col > 0 {
				b.WriteString("|")
			}
			cell := t.out.String(strconv.Itoa(i + 1)).Faint()
			if m := t.game.Board[i]; m != game.None {
				cell = t.styleMark(m)
				if winning[i] {
					cell = cell.Underline()
				}
			}
			b.WriteString(" " + cell.String() + " ")
		}
		b.WriteString("\n")
	}
	fmt.Fprint(t.out, b.String())
}

func (t *terminal) styleMark(m game.PlayerMark) termenv.Style {
	color := "4"
	if m == game.PlayerO {
		color = "1"
	}
	return t.out.String(string(m)).Foreground(t.out.Color(color)).Bold()
}
