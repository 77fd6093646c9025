package logit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Summary renders the statsmodels-style report: model statistics followed by
// the coefficient table with 95% confidence intervals.
func (r *Result) Summary() string {
	var b strings.Builder
	b.WriteString("Logit Regression Results\n")

	info := tablewriter.NewWriter(&b)
	info.SetBorder(false)
	info.SetColumnSeparator("")
	info.SetAlignment(tablewriter.ALIGN_LEFT)
	info.AppendBulk([][]string{
		{"Model:", "Logit", "No. Observations:", strconv.Itoa(r.NObs)},
		{"Method:", "MLE", "Df Residuals:", strconv.Itoa(r.DFResid)},
		{"converged:", strconv.FormatBool(r.Converged), "Df Model:", strconv.Itoa(r.DFModel)},
		{"Iterations:", strconv.Itoa(r.Iterations), "Pseudo R-squ.:", fmtStat(r.PseudoRSquared)},
		{"Log-Likelihood:", fmtStat(r.LLF), "LL-Null:", fmtStat(r.LLNull)},
		{"AIC:", fmtStat(r.AIC), "LLR p-value:", fmtStat(r.LLRPValue)},
		{"BIC:", fmtStat(r.BIC), "", ""},
	})
	info.Render()

	coef := tablewriter.NewWriter(&b)
	coef.SetHeader([]string{"", "coef", "std err", "z", "P>|z|", "[0.025", "0.975]"})
	coef.SetAutoFormatHeaders(false)
	coef.SetAlignment(tablewriter.ALIGN_RIGHT)
	ci := r.ConfInt(0.05)
	for j, name := range r.Names {
		coef.Append([]string{
			name,
			fmt.Sprintf("%.4f", r.Params[j]),
			fmt.Sprintf("%.3f", r.BSE[j]),
			fmt.Sprintf("%.3f", r.TValues[j]),
			fmt.Sprintf("%.3f", r.PValues[j]),
			fmt.Sprintf("%.3f", ci[j][0]),
			fmt.Sprintf("%.3f", ci[j][1]),
		})
	}
	coef.Render()
	return b.String()
}

func fmtStat(v float64) string {
	return strconv.FormatFloat(v, 'g', 5, 64)
}
