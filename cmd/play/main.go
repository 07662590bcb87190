package main

import (
	"flag"
	"fmt"
	"os"

	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/game"

	"github.com/muesli/termenv"
)

var (
	markFlag       = flag.String("mark", "", "your mark, X or O (default: random)")
	difficultyFlag = flag.String("difficulty", "hard", "easy, medium or hard")
	seedFlag       = flag.Uint64("seed", 0, "seed for the computer's random choices (default: unseeded)")
	strictFlag     = flag.Bool("strict", false, "only treat same-row cells as horizontal neighbours")
)

func main() {
	flag.Parse()

	human := game.RandomMark()
	if *markFlag != "" {
		m, err := game.ParseMark(*markFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		human = m
	}

	difficulty, err := bot.ParseDifficulty(*difficultyFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var rng bot.Random = bot.DefaultRandom
	if *seedFlag != 0 {
		rng = bot.NewSeededRandom(*seedFlag)
	}
	opts := []bot.Option{bot.WithDifficulty(difficulty)}
	if *strictFlag {
		opts = append(opts, bot.WithStrictAdjacency())
	}

	t := newTerminal(os.Stdin, termenv.NewOutput(os.Stdout), human, bot.NewSelector(rng, opts...))
	if err := t.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
