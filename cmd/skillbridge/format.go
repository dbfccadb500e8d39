package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/factory"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

func formatResources(out io.Writer, states []contract.CurrentEngineerState) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ENGINEER\tROLE\tLEVEL\tRATING\tUNIT_RATE\tSTART\tEND")
	_, _ = fmt.Fprintln(w, "--------\t----\t-----\t------\t---------\t-----\t---")
	for _, s := range states {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			engineerLabel(s.EngineerID),
			s.Role,
			s.Level,
			nullDecimal(s.Rating),
			nullDecimal(s.UnitRate),
			s.StartDate,
			datePtr(s.EndDate),
		)
	}
	_ = w.Flush()
}

func formatSnapshot(out io.Writer, snaps []contract.MonthlyEngineerSnapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ENGINEER\tLEVEL\tBILLING\tRATING\tSALARY\tHOURS\tSTART\tEND")
	_, _ = fmt.Fprintln(w, "--------\t-----\t-------\t------\t------\t-----\t-----\t---")
	for _, s := range snaps {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			engineerLabel(s.EngineerID),
			s.EngineerLevel,
			s.BillingType,
			s.Rating,
			s.Salary.StringFixed(2),
			nullDecimal(s.Hours),
			datePtr(s.StartDate),
			datePtr(s.EndDate),
		)
	}
	_ = w.Flush()
}

func formatBilling(out io.Writer, month generic.YearMonth, amount decimal.Decimal) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Month:\t%s\n", month)
	_, _ = fmt.Fprintf(w, "Amount:\t%s\n", amount.StringFixed(2))
	_ = w.Flush()
}

func formatTimeline(out io.Writer, months []contract.MonthSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "MONTH\tENGINEERS\tBILLING")
	_, _ = fmt.Fprintln(w, "-----\t---------\t-------")
	for _, m := range months {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", m.Month, len(m.Engineers), m.Billing.StringFixed(2))
	}
	_ = w.Flush()
}

func formatScenarios(out io.Writer, infos []factory.ScenarioInfo) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCONTRACT\tNAME")
	_, _ = fmt.Fprintln(w, "--\t--------\t----")
	for _, s := range infos {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\n", s.ID, s.ContractID, s.Name)
	}
	_ = w.Flush()
}

// engineerLabel renders "-" for engineers introduced by an ADD without an id.
func engineerLabel(id contract.EngineerID) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", id)
}

func nullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return d.Decimal.String()
}

func datePtr(tp *generic.TimePoint) string {
	if tp == nil {
		return "-"
	}
	return tp.String()
}
