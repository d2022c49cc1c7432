package solverio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/heartsnn/trickdata/card"
	"github.com/heartsnn/trickdata/gamestate"
)

// extraFeatureLineLens is how the solver lays the 33 extra features over
// its 7 lines: three progress values, then six rows of four per-player
// values plus their total.
var extraFeatureLineLens = [gamestate.ExtraFeatureLines]int{3, 5, 5, 5, 5, 5, 5}

// Write emits gs in the solver's text format, so that Reader reads it back.
// Probabilities are printed with 3 decimals and scores with 4, as the
// solver does.
func Write(w io.Writer, gs *gamestate.GameState) error {
	if len(gs.ExtraFeatures) != gamestate.NumExtraFeatures {
		return fmt.Errorf("cannot write %d extra features, want %d", len(gs.ExtraFeatures), gamestate.NumExtraFeatures)
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", gs.DealIndex)
	fmt.Fprintf(bw, "Play %d, Player Leading %d, Current Player %d, Choices %d TrickSuit %s\n",
		gs.Play, gs.Lead, gs.Current, gs.Choices, gs.TrickSuit)

	bw.WriteString("TrickSoFar:")
	for _, c := range gs.TrickSoFar {
		if c == card.NoCard {
			bw.WriteString(". ")
		} else {
			fmt.Fprintf(bw, "%3s  ", c)
		}
	}
	bw.WriteString("\n")

	bw.WriteString("PointsSoFar:")
	for _, p := range gs.PointsSoFar {
		fmt.Fprintf(bw, "%d ", p)
	}
	bw.WriteString("\n")

	for _, u := range gs.Distribution {
		fmt.Fprintf(bw, "%3s ", u.Card)
		for _, p := range u.Probs {
			fmt.Fprintf(bw, " %5.3f", p)
		}
		bw.WriteString("\n")
	}
	bw.WriteString(Separator + "\n")

	for _, eo := range gs.ExpectedOutputs {
		fmt.Fprintf(bw, "%3s  %5.4f %5.4f | %.3f %.3f %.3f\n", eo.Card, eo.ExpectedScore, eo.WinTrickProb,
			eo.MoonProbs[0], eo.MoonProbs[1], eo.MoonProbs[2])
	}
	bw.WriteString(Separator + "\n")

	i := 0
	for _, n := range extraFeatureLineLens {
		for j := range n {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(float64(gs.ExtraFeatures[i]), 'f', -1, 32))
			i++
		}
		bw.WriteString("\n")
	}
	bw.WriteString(Terminator + "\n")
	return bw.Flush()
}
