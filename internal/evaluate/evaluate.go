// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evaluate scores predictions against held-out labels: overall
// accuracy and a per-class precision/recall/F1 report with macro and
// support-weighted averages.
package evaluate

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// ClassMetrics holds the scores for one class or one average row.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Result is a classification report.
type Result struct {
	Classes     []ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Total       int
}

// Accuracy returns the fraction of positions where yPred matches yTrue.
func Accuracy(yTrue, yPred []int) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("true labels %d do not match predictions %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, nil
	}
	var correct int
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// Report scores every class in classes, including ones absent from both
// yTrue and yPred. Ratios with a zero denominator are 0.
func Report(yTrue, yPred []int, classes []string) (*Result, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return nil, err
	}
	k := len(classes)
	tp := make([]int, k)
	predicted := make([]int, k)
	support := make([]int, k)
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t >= k {
			return nil, fmt.Errorf("true label %d at row %d outside %d classes", t, i, k)
		}
		if p < 0 || p >= k {
			return nil, fmt.Errorf("predicted label %d at row %d outside %d classes", p, i, k)
		}
		support[t]++
		predicted[p]++
		if t == p {
			tp[t]++
		}
	}

	res := &Result{Accuracy: acc, Total: len(yTrue)}
	res.MacroAvg.Label = "macro avg"
	res.WeightedAvg.Label = "weighted avg"
	for c, label := range classes {
		m := ClassMetrics{
			Label:     label,
			Precision: ratio(tp[c], predicted[c]),
			Recall:    ratio(tp[c], support[c]),
			Support:   support[c],
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		res.Classes = append(res.Classes, m)

		res.MacroAvg.Precision += m.Precision
		res.MacroAvg.Recall += m.Recall
		res.MacroAvg.F1 += m.F1
		w := float64(m.Support)
		res.WeightedAvg.Precision += w * m.Precision
		res.WeightedAvg.Recall += w * m.Recall
		res.WeightedAvg.F1 += w * m.F1
	}
	if k > 0 {
		res.MacroAvg.Precision /= float64(k)
		res.MacroAvg.Recall /= float64(k)
		res.MacroAvg.F1 /= float64(k)
	}
	if res.Total > 0 {
		n := float64(res.Total)
		res.WeightedAvg.Precision /= n
		res.WeightedAvg.Recall /= n
		res.WeightedAvg.F1 /= n
	}
	res.MacroAvg.Support = res.Total
	res.WeightedAvg.Support = res.Total
	return res, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// Render writes the report as a table. Terminals get rounded box drawing;
// files and pipes get plain ASCII.
func (r *Result) Render(w io.Writer) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleDefault)
	if isTerminal(w) {
		tw.SetStyle(table.StyleRounded)
	}
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"", "precision", "recall", "f1-score", "support"})
	for _, m := range r.Classes {
		tw.AppendRow(metricsRow(m))
	}
	tw.AppendSeparator()
	tw.AppendRow(table.Row{"accuracy", "", "", score(r.Accuracy), strconv.Itoa(r.Total)})
	tw.AppendRow(metricsRow(r.MacroAvg))
	tw.AppendRow(metricsRow(r.WeightedAvg))

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}}
	for i := 2; i <= 5; i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)

	_, err := fmt.Fprintln(w, tw.Render())
	return err
}

func metricsRow(m ClassMetrics) table.Row {
	label := m.Label
	if label == "" {
		label = `""`
	}
	return table.Row{label, score(m.Precision), score(m.Recall), score(m.F1), strconv.Itoa(m.Support)}
}

func score(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
