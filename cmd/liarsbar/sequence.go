package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/lox/liarsbar/internal/sequence"
)

// SequenceCmd prints the generation table of a sequence
type SequenceCmd struct {
	Count      int   `default:"20" help:"Number of rows to print (0 for all)"`
	Seed       int64 `default:"122" help:"Seed"`
	Multiplier int64 `default:"223" help:"Multiplier"`
	Additive   int64 `default:"881" help:"Additive"`
	Modulus    int64 `default:"997" help:"Modulus"`
}

func (c *SequenceCmd) Run() error {
	gen, err := sequence.New(sequence.Params{
		Seed:       c.Seed,
		Multiplier: c.Multiplier,
		Additive:   c.Additive,
		Modulus:    c.Modulus,
	})
	if err != nil {
		return err
	}

	rows := gen.Rows()
	if c.Count > 0 && c.Count < len(rows) {
		rows = rows[:c.Count]
	}

	data := pterm.TableData{{"#", "x*a+c", "mod m", "value"}}
	for i, row := range rows {
		data = append(data, []string{
			strconv.Itoa(i),
			strconv.FormatInt(row.Product, 10),
			strconv.FormatInt(row.Residue, 10),
			strconv.FormatFloat(row.Fraction, 'f', 10, 64),
		})
	}

	pterm.DefaultSection.Println(fmt.Sprintf("Sequence seed=%d a=%d c=%d m=%d (period %d)",
		c.Seed, c.Multiplier, c.Additive, c.Modulus, gen.Period()))
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
