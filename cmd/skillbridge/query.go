package main

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/contract"
	"github.com/AnhDQHE181109/SEP490-SkillBridge-BE/generic"
)

// -- resources --

var resourcesCmd = &cobra.Command{
	Use:   "resources <contract-id>",
	Short: "Show the roster of a contract on a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		contractID, err := parseContractID(args[0])
		if err != nil {
			return err
		}
		asOf, err := dateFlag(cmd, "as-of")
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		states, err := newEngine(st).CurrentResources(ctx, contractID, asOf)
		if err != nil {
			return eris.Wrap(err, "resources")
		}
		formatResources(os.Stdout, states)
		return nil
	},
}

// -- snapshot --

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <contract-id>",
	Short: "Show the roster of a contract for a month, with billing shape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		contractID, err := parseContractID(args[0])
		if err != nil {
			return err
		}
		month, err := monthFlag(cmd, "month")
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		snaps, err := newEngine(st).MonthlySnapshot(ctx, contractID, month)
		if err != nil {
			return eris.Wrap(err, "snapshot")
		}
		formatSnapshot(os.Stdout, snaps)
		return nil
	},
}

// -- billing --

var billingCmd = &cobra.Command{
	Use:   "billing <contract-id>",
	Short: "Show the billing amount of a contract for a month",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		contractID, err := parseContractID(args[0])
		if err != nil {
			return err
		}
		month, err := monthFlag(cmd, "month")
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		amount, err := newEngine(st).CurrentBilling(ctx, contractID, month)
		if err != nil {
			return eris.Wrap(err, "billing")
		}
		formatBilling(os.Stdout, month, amount)
		return nil
	},
}

// -- timeline --

var timelineCmd = &cobra.Command{
	Use:   "timeline <contract-id>",
	Short: "Show roster size and billing for each month of a range",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		contractID, err := parseContractID(args[0])
		if err != nil {
			return err
		}
		from, err := monthFlag(cmd, "from")
		if err != nil {
			return err
		}
		to, err := monthFlag(cmd, "to")
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		months, err := newEngine(st).Timeline(ctx, contractID, from, to)
		if err != nil {
			return eris.Wrap(err, "timeline")
		}
		formatTimeline(os.Stdout, months)
		return nil
	},
}

func parseContractID(arg string) (contract.ContractID, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, &generic.ValidationError{Field: "contract-id", Value: arg, Err: generic.ErrInvalidID}
	}
	return contract.ContractID(id), nil
}

// dateFlag parses a YYYY-MM-DD flag, defaulting to today.
func dateFlag(cmd *cobra.Command, name string) (generic.TimePoint, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return generic.DateOf(time.Now()), nil
	}
	return generic.ParseDate(raw)
}

// monthFlag parses a YYYY-MM flag, defaulting to the current month.
func monthFlag(cmd *cobra.Command, name string) (generic.YearMonth, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return generic.YearMonthOf(generic.DateOf(time.Now())), nil
	}
	return generic.ParseYearMonth(raw)
}

func init() {
	resourcesCmd.Flags().String("as-of", "", "day to reconstruct, YYYY-MM-DD (default today)")
	snapshotCmd.Flags().String("month", "", "month to reconstruct, YYYY-MM (default current month)")
	billingCmd.Flags().String("month", "", "billing month, YYYY-MM (default current month)")
	timelineCmd.Flags().String("from", "", "first month, YYYY-MM (default current month)")
	timelineCmd.Flags().String("to", "", "last month, YYYY-MM (default current month)")

	rootCmd.AddCommand(resourcesCmd, snapshotCmd, billingCmd, timelineCmd)
}
